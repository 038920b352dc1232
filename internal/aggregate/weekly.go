// Package aggregate computes the time-bucketed payment and collection
// KPIs from a flat deal list. Every function is pure over its inputs;
// the caller supplies the reference period explicitly, so concurrent
// calls with different periods are independent.
package aggregate

import (
	"kpideck/internal/deal"
	"kpideck/internal/kst"
)

// Horizons are the fixed conversion day-count thresholds of the weekly
// payment table, in display order. Horizon 0 is same-day payment.
var Horizons = []int{0, 3, 7, 21, 30, 60}

// Targets holds the count-rate goals for the horizons that have one.
var Targets = map[int]float64{
	3:  80,
	30: 90,
	60: 95,
}

// HorizonStatus values grade a horizon's count rate against its target.
const (
	StatusAchieved = "achieved"
	StatusWarning  = "warning"
	StatusFailed   = "failed"
)

// HorizonResult is one row of the weekly conversion table: the deals of
// the reference set that converted within the horizon, with rates
// against the full reference set.
type HorizonResult struct {
	Horizon    int         `json:"horizon"`
	Count      int         `json:"count"`
	Amount     int64       `json:"amount"`
	CountRate  float64     `json:"countRate"`
	AmountRate float64     `json:"amountRate"`
	Status     string      `json:"status,omitempty"`
	Deals      []deal.Deal `json:"deals"`
}

// BucketResult is a plain deal subset with its count and amount total,
// used for the unpaid bucket and the drill-down detail views.
type BucketResult struct {
	Count  int         `json:"count"`
	Amount int64       `json:"amount"`
	Deals  []deal.Deal `json:"deals"`
}

// WeeklyConversion is the full weekly payment KPI set for one week.
type WeeklyConversion struct {
	Label           string          `json:"label"`
	ReferenceCount  int             `json:"referenceCount"`
	ReferenceAmount int64           `json:"referenceAmount"`
	Horizons        []HorizonResult `json:"horizons"`
	Unpaid          BucketResult    `json:"unpaid"`
}

// ComputeWeeklyConversion filters deals to those whose first payment
// notice falls inside the week, then grades every conversion horizon
// against that reference set. A horizon of N days covers day
// differences 0 through N-1: the notice day counts as day 1, so a deal
// noticed 01-01 and won 01-03 sits on day 3 and converts within the
// 3-day horizon.
func ComputeWeeklyConversion(deals []deal.Deal, week kst.Week) WeeklyConversion {
	reference := filterNoticeInWeek(deals, week)

	out := WeeklyConversion{
		Label:           week.Label(),
		ReferenceCount:  len(reference),
		ReferenceAmount: deal.Sum(reference),
		Horizons:        make([]HorizonResult, 0, len(Horizons)),
	}

	for _, horizon := range Horizons {
		converted := convertedWithin(reference, horizon)
		r := HorizonResult{
			Horizon: horizon,
			Count:   len(converted),
			Amount:  deal.Sum(converted),
			Deals:   converted,
		}
		r.CountRate = rate(float64(r.Count), float64(out.ReferenceCount))
		r.AmountRate = rate(float64(r.Amount), float64(out.ReferenceAmount))
		r.Status = horizonStatus(horizon, r.CountRate, out.ReferenceCount)
		out.Horizons = append(out.Horizons, r)
	}

	unpaid := make([]deal.Deal, 0)
	for _, d := range reference {
		if d.WonTime == nil {
			unpaid = append(unpaid, d)
		}
	}
	out.Unpaid = BucketResult{Count: len(unpaid), Amount: deal.Sum(unpaid), Deals: unpaid}

	return out
}

func filterNoticeInWeek(deals []deal.Deal, week kst.Week) []deal.Deal {
	filtered := make([]deal.Deal, 0)
	for _, d := range deals {
		if d.FirstPaymentNotice != nil && week.Contains(*d.FirstPaymentNotice) {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// convertedWithin selects reference deals won within the horizon.
// Horizon 0 means won on the notice day itself.
func convertedWithin(reference []deal.Deal, horizon int) []deal.Deal {
	converted := make([]deal.Deal, 0)
	for _, d := range reference {
		if d.WonTime == nil {
			continue
		}
		diff := kst.DayDiff(*d.FirstPaymentNotice, *d.WonTime)
		if horizon == 0 {
			if diff == 0 {
				converted = append(converted, d)
			}
		} else if diff >= 0 && diff <= horizon-1 {
			converted = append(converted, d)
		}
	}
	return converted
}

func horizonStatus(horizon int, countRate float64, referenceCount int) string {
	target, ok := Targets[horizon]
	if !ok {
		return ""
	}
	switch {
	case countRate >= target:
		return StatusAchieved
	case countRate >= target*0.8:
		return StatusWarning
	case referenceCount > 0:
		return StatusFailed
	default:
		return ""
	}
}

// rate returns num/den as a percentage, 0 when the denominator is not
// positive. Shared by every aggregation in the package.
func rate(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den * 100
}

// RateGrade classifies a conversion rate for row coloring in the
// weekly table.
func RateGrade(r float64) string {
	switch {
	case r >= 70:
		return "high"
	case r >= 40:
		return "medium"
	case r > 0:
		return "low"
	default:
		return ""
	}
}
