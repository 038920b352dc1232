package aggregate

import (
	"kpideck/internal/deal"
	"kpideck/internal/kst"
	"time"
)

// monthBuckets is the number of discrete elapsed-month aging buckets
// before a deal falls into the over bucket.
const monthBuckets = 12

// MonthTracking is one row of the yearly collection aging table: the
// deals transferred to collection in that month, bucketed by how many
// whole calendar months passed between the transfer and the payment.
// Buckets partition the transfer set exactly: elapsed months 0..11,
// twelve or more, and deals never paid.
type MonthTracking struct {
	Month          int            `json:"month"` // 1..12
	RefundAmount   int64          `json:"refundAmount"`
	TransferCount  int            `json:"transferCount"`
	TransferAmount int64          `json:"transferAmount"`
	TransferRatio  float64        `json:"transferRatio"`
	Buckets        []BucketResult `json:"buckets"` // index = elapsed months
	Over           BucketResult   `json:"over"`
	Unpaid         BucketResult   `json:"unpaid"`
	PaidCount      int            `json:"paidCount"`
	PaidAmount     int64          `json:"paidAmount"`
	PaidRate       float64        `json:"paidRate"`
	Transfer       []deal.Deal    `json:"transfer"`
}

// ComputeYearlyTracking builds the twelve monthly aging rows for one
// target year. Each row's refund denominator is the notice-date total
// of the immediately preceding calendar month; January reaches back
// into December of the prior year.
func ComputeYearlyTracking(deals []deal.Deal, year int) []MonthTracking {
	rows := make([]MonthTracking, 0, 12)
	for m := time.January; m <= time.December; m++ {
		rows = append(rows, computeMonthTracking(deals, kst.Month{Year: year, Month: m}))
	}
	return rows
}

func computeMonthTracking(deals []deal.Deal, month kst.Month) MonthTracking {
	prev := month.Prev()

	var refundAmount int64
	for _, d := range deals {
		if d.FirstPaymentNotice != nil && prev.Contains(*d.FirstPaymentNotice) {
			refundAmount += d.Value
		}
	}

	transfer := make([]deal.Deal, 0)
	for _, d := range deals {
		if d.CollectionOrderDate != nil && month.Contains(*d.CollectionOrderDate) {
			transfer = append(transfer, d)
		}
	}

	row := MonthTracking{
		Month:          int(month.Month),
		RefundAmount:   refundAmount,
		TransferCount:  len(transfer),
		TransferAmount: deal.Sum(transfer),
		Transfer:       transfer,
	}
	row.TransferRatio = rate(float64(row.TransferAmount), float64(refundAmount))

	byMonth := make([][]deal.Deal, monthBuckets)
	for i := range byMonth {
		byMonth[i] = make([]deal.Deal, 0)
	}
	over := make([]deal.Deal, 0)
	unpaid := make([]deal.Deal, 0)

	for _, d := range transfer {
		if d.WonTime == nil {
			unpaid = append(unpaid, d)
			continue
		}
		elapsed := kst.MonthDiff(*d.CollectionOrderDate, *d.WonTime)
		switch {
		case elapsed >= monthBuckets:
			over = append(over, d)
		default:
			// Negative elapsed months happen when a payment lands
			// before the transfer is recorded; clamp to the first
			// bucket so the partition stays exact.
			if elapsed < 0 {
				elapsed = 0
			}
			byMonth[elapsed] = append(byMonth[elapsed], d)
		}
	}

	row.Buckets = make([]BucketResult, monthBuckets)
	for i, b := range byMonth {
		row.Buckets[i] = BucketResult{Count: len(b), Amount: deal.Sum(b), Deals: b}
	}
	row.Over = BucketResult{Count: len(over), Amount: deal.Sum(over), Deals: over}
	row.Unpaid = BucketResult{Count: len(unpaid), Amount: deal.Sum(unpaid), Deals: unpaid}

	for _, d := range transfer {
		if d.WonTime != nil {
			row.PaidCount++
			row.PaidAmount += d.Value
		}
	}
	row.PaidRate = rate(float64(row.PaidAmount), float64(row.TransferAmount))

	return row
}
