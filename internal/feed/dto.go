package feed

import (
	"bytes"
	"encoding/json"
	"strconv"

	"kpideck/internal/report"
)

// envelope is the top-level container every feed endpoint returns.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// FlexInt decodes a JSON field that the spreadsheet backend emits as
// either a number or a numeric string, depending on the cell format.
// Empty strings and malformed values decode to 0.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*f = 0
			return nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexInt(n)
	return nil
}

// DealDTO is one row of the shared deals feed.
type DealDTO struct {
	ID                  FlexInt `json:"id"`
	Title               string  `json:"title"`
	PersonName          string  `json:"person_name"`
	Value               FlexInt `json:"value"`
	WonTime             string  `json:"won_time"`
	FirstPaymentNotice  string  `json:"first_payment_notice"`
	CollectionOrderDate string  `json:"collection_order_date"`
}

// PerformancePart is one side of the monthly performance summary.
type PerformancePart struct {
	Amount int64 `json:"amount"`
	Count  int   `json:"count"`
}

// PerformanceDTO is the monthly performance summary from the feed.
type PerformanceDTO struct {
	Apply   PerformancePart `json:"apply"`
	Defense PerformancePart `json:"defense"`
	Total   int64           `json:"total"`
}

// ActivityPart groups one team's activity counters.
type ActivityPart struct {
	Activity int64 `json:"activity"`
	Absent   int64 `json:"absent"`
	Followup int64 `json:"followup"`
	Sms      int64 `json:"sms"`
}

// ActivityDTO is the daily activity summary from the feed.
type ActivityDTO struct {
	Apply   ActivityPart `json:"apply"`
	Defense ActivityPart `json:"defense"`
}

// TargetDTO is the stored monthly target amount.
type TargetDTO struct {
	Amount int64 `json:"amount"`
}

// ManualData bundles the manually entered dashboard figures persisted
// in the remote store. Sections absent from the store are nil. Field
// layouts match the parser result types, so a record parsed locally
// round-trips through the store unchanged.
type ManualData struct {
	Coverage    *report.CoverageResult    `json:"coverage,omitempty"`
	Activity    *report.ActivityResult    `json:"activity,omitempty"`
	Application *report.ApplicationResult `json:"application,omitempty"`
	Defense     *report.DefenseResult     `json:"defense,omitempty"`
	Target      *TargetDTO                `json:"target,omitempty"`
}
