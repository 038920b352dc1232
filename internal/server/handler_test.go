package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpideck/internal/deal"
	"kpideck/internal/feed"
	"kpideck/internal/kst"
	"kpideck/internal/report"
	"kpideck/internal/snapshot"
)

type stubSource struct {
	deals       []deal.Deal
	dealsErr    error
	performance *feed.PerformanceDTO
	activity    *feed.ActivityDTO
	manual      *feed.ManualData

	savedSection string
	savedData    any
	saveErr      error
}

func (s *stubSource) FetchDeals() ([]deal.Deal, error) {
	return s.deals, s.dealsErr
}

func (s *stubSource) FetchPerformance() (*feed.PerformanceDTO, error) {
	if s.performance == nil {
		return nil, fmt.Errorf("no performance data")
	}
	return s.performance, nil
}

func (s *stubSource) FetchActivity() (*feed.ActivityDTO, error) {
	if s.activity == nil {
		return nil, fmt.Errorf("no activity data")
	}
	return s.activity, nil
}

func (s *stubSource) FetchManual() (*feed.ManualData, error) {
	if s.manual == nil {
		return &feed.ManualData{}, nil
	}
	return s.manual, nil
}

func (s *stubSource) SaveManual(section string, data any) error {
	s.savedSection = section
	s.savedData = data
	return s.saveErr
}

func newTestAPI(t *testing.T, source *stubSource) (*WebAPI, *snapshot.Store) {
	t.Helper()

	store := snapshot.NewStore(t.TempDir())
	require.NoError(t, store.Load())

	api := NewWebAPI(zerolog.Nop(), Config{
		Addr: "127.0.0.1:0",
		Dependencies: Dependencies{
			Feed:      source,
			Snapshots: store,
		},
	})
	return api, store
}

func testDeal(t *testing.T, id int64, value int64, notice, won string) deal.Deal {
	t.Helper()

	d := deal.Deal{ID: id, Name: fmt.Sprintf("deal-%d", id), Value: value}
	if notice != "" {
		ts, ok := kst.Parse(notice)
		require.True(t, ok)
		d.FirstPaymentNotice = &ts
	}
	if won != "" {
		ts, ok := kst.Parse(won)
		require.True(t, ok)
		d.WonTime = &ts
	}
	return d
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, json.RawMessage, string) {
	t.Helper()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Success, env.Data, env.Error
}

func TestParseReportCoverage(t *testing.T) {
	source := &stubSource{}
	api, _ := newTestAPI(t, source)

	body := strings.Join([]string{
		"전환 성공 건수",
		"40",
		"미전환 건수 (구간 전체)",
		"10",
	}, "\n")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/coverage", strings.NewReader(body))
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)

	var result report.CoverageResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, int64(40), result.SuccessCount)
	assert.Equal(t, int64(10), result.UnconvertedCount)
	assert.InDelta(t, 80.0, result.CountRate, 0.01)

	assert.Equal(t, "coverage", source.savedSection)
}

func TestParseReportSnapshotsToday(t *testing.T) {
	source := &stubSource{}
	api, store := newTestAPI(t, source)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/coverage",
		strings.NewReader("전환 성공 건수\n40"))
	api.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	today := time.Now().In(kst.Zone).Format("2006-01-02")
	snap, ok := store.Get(today)
	require.True(t, ok)
	require.NotNil(t, snap.Coverage)
	assert.Equal(t, int64(40), snap.Coverage.SuccessCount)
}

func TestParseReportUnknownType(t *testing.T) {
	api, _ := newTestAPI(t, &stubSource{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/bogus", strings.NewReader("x"))
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	success, _, errMsg := decodeEnvelope(t, rec)
	assert.False(t, success)
	assert.Contains(t, errMsg, "bogus")
}

func TestParseReportSaveFailureStillReturnsResult(t *testing.T) {
	source := &stubSource{saveErr: fmt.Errorf("sheet unavailable")}
	api, _ := newTestAPI(t, source)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/defense", strings.NewReader("KPI_취소전체\n₩1,000"))
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	success, _, _ := decodeEnvelope(t, rec)
	assert.True(t, success)
}

func TestPaymentWeekly(t *testing.T) {
	source := &stubSource{
		deals: []deal.Deal{
			testDeal(t, 1, 1_000_000, "2026-01-06", "2026-01-07"),
			testDeal(t, 2, 2_000_000, "2026-01-06", ""),
			testDeal(t, 3, 3_000_000, "2026-02-10", ""),
		},
	}
	api, _ := newTestAPI(t, source)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment/weekly?week=2026-01-05", nil)
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)

	var result struct {
		ReferenceCount  int   `json:"referenceCount"`
		ReferenceAmount int64 `json:"referenceAmount"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 2, result.ReferenceCount)
	assert.Equal(t, int64(3_000_000), result.ReferenceAmount)
}

func TestPaymentWeeklyBadWeek(t *testing.T) {
	api, _ := newTestAPI(t, &stubSource{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment/weekly?week=garbage", nil)
	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentWeeklyFeedError(t *testing.T) {
	source := &stubSource{dealsErr: fmt.Errorf("feed down")}
	api, _ := newTestAPI(t, source)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payment/weekly?week=2026-01-05", nil)
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	success, _, errMsg := decodeEnvelope(t, rec)
	assert.False(t, success)
	assert.Contains(t, errMsg, "feed down")
}

func TestCollectionYearly(t *testing.T) {
	source := &stubSource{
		deals: []deal.Deal{
			{ID: 1, Name: "a", Value: 5_000_000,
				WonTime:             tsPtr(t, "2026-03-10"),
				CollectionOrderDate: tsPtr(t, "2026-03-01")},
		},
	}
	api, _ := newTestAPI(t, source)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/collection/yearly?year=2026", nil)
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)

	var rows []struct {
		Month         int   `json:"month"`
		TransferCount int   `json:"transferCount"`
		PaidCount     int   `json:"paidCount"`
		PaidAmount    int64 `json:"paidAmount"`
	}
	require.NoError(t, json.Unmarshal(data, &rows))
	require.Len(t, rows, 12)
	assert.Equal(t, 1, rows[2].TransferCount)
	assert.Equal(t, 1, rows[2].PaidCount)
	assert.Equal(t, int64(5_000_000), rows[2].PaidAmount)
}

func tsPtr(t *testing.T, raw string) *time.Time {
	t.Helper()
	ts, ok := kst.Parse(raw)
	require.True(t, ok)
	return &ts
}

func TestSaveTarget(t *testing.T) {
	source := &stubSource{}
	api, _ := newTestAPI(t, source)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/target",
		bytes.NewReader([]byte(`{"input":"5억"}`)))
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)

	var target feed.TargetDTO
	require.NoError(t, json.Unmarshal(data, &target))
	assert.Equal(t, int64(500_000_000), target.Amount)
	assert.Equal(t, "target", source.savedSection)
}

func TestSummaryDaily(t *testing.T) {
	source := &stubSource{
		performance: &feed.PerformanceDTO{
			Apply:   feed.PerformancePart{Amount: 500_000_000},
			Defense: feed.PerformancePart{Amount: 250_000_000},
			Total:   750_000_000,
		},
		manual: &feed.ManualData{
			Target: &feed.TargetDTO{Amount: 1_000_000_000},
		},
	}
	api, _ := newTestAPI(t, source)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary/daily", nil)
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, rec.Body.String(), "성과 요약")
	assert.Contains(t, rec.Body.String(), "• 합계: 7.50억")
	assert.Contains(t, rec.Body.String(), "진행률: 75.0%")
}

func TestSummaryUnknownType(t *testing.T) {
	api, _ := newTestAPI(t, &stubSource{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary/bogus", nil)
	api.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportWeekly(t *testing.T) {
	source := &stubSource{
		deals: []deal.Deal{
			testDeal(t, 1, 1_000_000, "2026-01-06", "2026-01-07"),
			testDeal(t, 2, 2_000_000, "2026-02-10", ""),
		},
	}
	api, _ := newTestAPI(t, source)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/weekly?week=2026-01-05", nil)
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "weekly_260105.csv")

	body := rec.Body.Bytes()
	assert.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(body), "거래ID")
	assert.Contains(t, string(body), "deal-1")
	assert.NotContains(t, string(body), "deal-2")
}

func TestSnapshotLifecycle(t *testing.T) {
	api, _ := newTestAPI(t, &stubSource{})
	router := api.Router()

	snap := `{"date":"2026-01-15","performance":{"apply":{"amount":100},"defense":{"amount":50},"total":150}}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/snapshots", strings.NewReader(snap)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/snapshots/2026-01-15", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)

	var got snapshot.Snapshot
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2026-01-15", got.Date)
	require.NotNil(t, got.Performance)
	assert.Equal(t, int64(150), got.Performance.Total)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/snapshots", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	_, data, _ = decodeEnvelope(t, rec)
	var list []snapshot.Snapshot
	require.NoError(t, json.Unmarshal(data, &list))
	assert.Len(t, list, 1)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/snapshots/2026-01-15", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/snapshots/2026-01-15", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestManualProxy(t *testing.T) {
	source := &stubSource{
		manual: &feed.ManualData{
			Coverage: &report.CoverageResult{SuccessCount: 40},
		},
	}
	api, _ := newTestAPI(t, source)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/manual", nil)
	api.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	success, data, _ := decodeEnvelope(t, rec)
	assert.True(t, success)

	var manual feed.ManualData
	require.NoError(t, json.Unmarshal(data, &manual))
	require.NotNil(t, manual.Coverage)
	assert.Equal(t, int64(40), manual.Coverage.SuccessCount)
}
