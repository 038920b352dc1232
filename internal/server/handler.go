package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"kpideck/internal/aggregate"
	"kpideck/internal/deal"
	"kpideck/internal/export"
	"kpideck/internal/feed"
	"kpideck/internal/kst"
	"kpideck/internal/report"
	"kpideck/internal/snapshot"
	"kpideck/internal/summary"
)

// Source is the slice of the feed client the handlers consume.
type Source interface {
	FetchDeals() ([]deal.Deal, error)
	FetchPerformance() (*feed.PerformanceDTO, error)
	FetchActivity() (*feed.ActivityDTO, error)
	FetchManual() (*feed.ManualData, error)
	SaveManual(section string, data any) error
}

// Handler serves the dashboard API.
type Handler struct {
	feed      Source
	snapshots *snapshot.Store
	now       func() time.Time
}

// NewHandler creates a handler over the given collaborators.
func NewHandler(source Source, snapshots *snapshot.Store) *Handler {
	return &Handler{
		feed:      source,
		snapshots: snapshots,
		now:       time.Now,
	}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(apiResponse{Success: true, Data: data}); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Success: false, Error: err.Error()})
}

// ParseReport parses pasted report text. The body is the raw paste; the
// URL names the rule table. Results are persisted best-effort to the
// remote manual-data store and to today's snapshot: a store failure is
// logged, not surfaced, so the caller still gets the parsed figures.
func (h *Handler) ParseReport(w http.ResponseWriter, r *http.Request) {
	reportType := chi.URLParam(r, "type")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("failed to read body: %w", err))
		return
	}

	date := h.now().In(kst.Zone).Format("2006-01-02")
	snap, _ := h.snapshots.Get(date)
	snap.Date = date
	snap.Timestamp = h.now()

	var result any
	switch reportType {
	case "coverage":
		res := report.ParseCoverage(string(body))
		snap.Coverage = &res
		result = res
	case "activity":
		res := report.ParseActivity(string(body))
		snap.Activity = &res
		result = res
	case "application":
		res := report.ParseApplication(string(body))
		snap.Application = &res
		result = res
	case "defense":
		res := report.ParseDefense(string(body))
		snap.Defense = &res
		result = res
	default:
		writeError(w, r, http.StatusNotFound, fmt.Errorf("unknown report type %q", reportType))
		return
	}

	if err := h.feed.SaveManual(reportType, result); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("type", reportType).Msg("failed to persist parsed report")
	}
	if err := h.snapshots.Save(snap); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Str("date", date).Msg("failed to snapshot parsed report")
	}

	writeJSON(w, r, result)
}

// weekParam resolves the week query parameter, defaulting to the
// current week.
func (h *Handler) weekParam(r *http.Request) (kst.Week, error) {
	raw := r.URL.Query().Get("week")
	if raw == "" {
		return kst.WeekOf(h.now()), nil
	}
	week, ok := kst.ParseWeek(raw)
	if !ok {
		return kst.Week{}, fmt.Errorf("invalid week %q, want YYYY-MM-DD", raw)
	}
	return week, nil
}

func (h *Handler) monthParam(r *http.Request) (kst.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return kst.MonthOf(h.now()), nil
	}
	month, ok := kst.ParseMonth(raw)
	if !ok {
		return kst.Month{}, fmt.Errorf("invalid month %q, want YYYY-MM", raw)
	}
	return month, nil
}

func (h *Handler) yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.now().In(kst.Zone).Year(), nil
	}
	var year int
	if _, err := fmt.Sscanf(raw, "%d", &year); err != nil || year < 1 {
		return 0, fmt.Errorf("invalid year %q", raw)
	}
	return year, nil
}

// PaymentWeekly serves the weekly conversion table.
func (h *Handler) PaymentWeekly(w http.ResponseWriter, r *http.Request) {
	week, err := h.weekParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	deals, err := h.feed.FetchDeals()
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, r, aggregate.ComputeWeeklyConversion(deals, week))
}

// PaymentMonthly serves the month's payment total.
func (h *Handler) PaymentMonthly(w http.ResponseWriter, r *http.Request) {
	month, err := h.monthParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	deals, err := h.feed.FetchDeals()
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, r, aggregate.ComputeMonthlyPayment(deals, month))
}

// CollectionMonthly serves the month's transfer-to-refund KPI pair.
func (h *Handler) CollectionMonthly(w http.ResponseWriter, r *http.Request) {
	month, err := h.monthParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	deals, err := h.feed.FetchDeals()
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, r, aggregate.ComputeCollectionMonth(deals, month))
}

// CollectionYearly serves the twelve-month aging table.
func (h *Handler) CollectionYearly(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	deals, err := h.feed.FetchDeals()
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, r, aggregate.ComputeYearlyTracking(deals, year))
}

// Performance proxies the feed's monthly performance summary.
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.feed.FetchPerformance()
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, r, perf)
}

// Activity proxies the feed's daily activity summary.
func (h *Handler) Activity(w http.ResponseWriter, r *http.Request) {
	act, err := h.feed.FetchActivity()
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, r, act)
}

// Manual serves the stored manually entered figures.
func (h *Handler) Manual(w http.ResponseWriter, r *http.Request) {
	manual, err := h.feed.FetchManual()
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, r, manual)
}

type targetRequest struct {
	Input string `json:"input"`
}

// SaveTarget parses a target-amount input such as "5억" and persists
// it to the manual-data store.
func (h *Handler) SaveTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("failed to decode body: %w", err))
		return
	}

	target := feed.TargetDTO{Amount: summary.ParseTarget(req.Input)}
	if err := h.feed.SaveManual("target", target); err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, r, target)
}

// Summary renders one of the copy-paste digests as plain text.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	var text string
	switch chi.URLParam(r, "type") {
	case "daily":
		manual, err := h.feed.FetchManual()
		if err != nil {
			writeError(w, r, http.StatusBadGateway, err)
			return
		}
		perf, err := h.feed.FetchPerformance()
		if err != nil {
			writeError(w, r, http.StatusBadGateway, err)
			return
		}
		in := summary.DailyInput{
			Performance: perf,
			Coverage:    manual.Coverage,
			Activity:    manual.Activity,
			Application: manual.Application,
			Defense:     manual.Defense,
		}
		if manual.Target != nil {
			in.Target = manual.Target.Amount
			in.ProgressRate = report.Percent(float64(perf.Total), float64(in.Target))
		}
		text = summary.BuildDaily(in, h.now())

	case "payment":
		week, err := h.weekParam(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		month, err := h.monthParam(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		deals, err := h.feed.FetchDeals()
		if err != nil {
			writeError(w, r, http.StatusBadGateway, err)
			return
		}
		text = summary.BuildPayment(
			aggregate.ComputeMonthlyPayment(deals, month),
			aggregate.ComputeWeeklyConversion(deals, week),
			h.now())

	case "collection":
		month, err := h.monthParam(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		year, err := h.yearParam(r)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}
		deals, err := h.feed.FetchDeals()
		if err != nil {
			writeError(w, r, http.StatusBadGateway, err)
			return
		}
		text = summary.BuildCollection(
			aggregate.ComputeCollectionMonth(deals, month),
			year,
			aggregate.ComputeYearlyTracking(deals, year),
			h.now())

	default:
		writeError(w, r, http.StatusNotFound, fmt.Errorf("unknown summary type %q", chi.URLParam(r, "type")))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

// ExportWeekly streams the week's reference deals as CSV.
func (h *Handler) ExportWeekly(w http.ResponseWriter, r *http.Request) {
	week, err := h.weekParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	deals, err := h.feed.FetchDeals()
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}

	weekly := aggregate.ComputeWeeklyConversion(deals, week)
	reference := make([]deal.Deal, 0)
	for _, d := range deals {
		if d.FirstPaymentNotice != nil && week.Contains(*d.FirstPaymentNotice) {
			reference = append(reference, d)
		}
	}

	name := fmt.Sprintf("weekly_%s.csv", week.Start().Format("060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.WriteWeeklyRaw(w, reference); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("week", weekly.Label).Msg("failed to write weekly CSV")
	}
}

// ExportMonthly streams the month's paid deals as CSV.
func (h *Handler) ExportMonthly(w http.ResponseWriter, r *http.Request) {
	month, err := h.monthParam(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	deals, err := h.feed.FetchDeals()
	if err != nil {
		writeError(w, r, http.StatusBadGateway, err)
		return
	}

	monthly := aggregate.ComputeMonthlyPayment(deals, month)

	name := fmt.Sprintf("monthly_%s.csv", month.String())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.WriteMonthlyRaw(w, monthly.Deals); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("month", month.String()).Msg("failed to write monthly CSV")
	}
}

// ListSnapshots serves all stored snapshots, newest first.
func (h *Handler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.snapshots.List())
}

// SaveSnapshot stores the posted snapshot under today's date unless
// the body names one.
func (h *Handler) SaveSnapshot(w http.ResponseWriter, r *http.Request) {
	var snap snapshot.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("failed to decode body: %w", err))
		return
	}
	if snap.Date == "" {
		snap.Date = h.now().In(kst.Zone).Format("2006-01-02")
	}
	if err := h.snapshots.Save(snap); err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, r, snap)
}

// GetSnapshot serves one date's snapshot.
func (h *Handler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	snap, ok := h.snapshots.Get(date)
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Errorf("no snapshot for %s", date))
		return
	}
	writeJSON(w, r, snap)
}

// DeleteSnapshot removes one date's snapshot.
func (h *Handler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	ok, err := h.snapshots.Delete(date)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, fmt.Errorf("no snapshot for %s", date))
		return
	}
	writeJSON(w, r, map[string]string{"deleted": date})
}
