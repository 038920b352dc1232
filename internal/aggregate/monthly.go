package aggregate

import (
	"kpideck/internal/deal"
	"kpideck/internal/kst"
)

// MonthlyPayment is the total payment volume for one calendar month,
// keyed on won time.
type MonthlyPayment struct {
	Month  string      `json:"month"`
	Count  int         `json:"count"`
	Amount int64       `json:"amount"`
	Deals  []deal.Deal `json:"deals"`
}

// ComputeMonthlyPayment sums deals won inside the month.
func ComputeMonthlyPayment(deals []deal.Deal, month kst.Month) MonthlyPayment {
	won := make([]deal.Deal, 0)
	for _, d := range deals {
		if d.WonTime != nil && month.Contains(*d.WonTime) {
			won = append(won, d)
		}
	}
	return MonthlyPayment{
		Month:  month.String(),
		Count:  len(won),
		Amount: deal.Sum(won),
		Deals:  won,
	}
}

// CollectionMonth is the month-level collection KPI pair: last month's
// completed refunds against this month's collection transfers. The
// one-month offset between the two sides mirrors the operational lag
// between a refund instruction and its transfer to collection.
type CollectionMonth struct {
	Month          string  `json:"month"`
	RefundMonth    string  `json:"refundMonth"`
	RefundCount    int     `json:"refundCount"`
	RefundAmount   int64   `json:"refundAmount"`
	TransferCount  int     `json:"transferCount"`
	TransferAmount int64   `json:"transferAmount"`
	Ratio          float64 `json:"ratio"`
}

// ComputeCollectionMonth computes the transfer-to-refund ratio for one
// month: transfers are deals with a collection order date inside the
// month, refunds are deals noticed in the preceding month.
func ComputeCollectionMonth(deals []deal.Deal, month kst.Month) CollectionMonth {
	prev := month.Prev()

	var refundCount int
	var refundAmount int64
	for _, d := range deals {
		if d.FirstPaymentNotice != nil && prev.Contains(*d.FirstPaymentNotice) {
			refundCount++
			refundAmount += d.Value
		}
	}

	var transferCount int
	var transferAmount int64
	for _, d := range deals {
		if d.CollectionOrderDate != nil && month.Contains(*d.CollectionOrderDate) {
			transferCount++
			transferAmount += d.Value
		}
	}

	return CollectionMonth{
		Month:          month.String(),
		RefundMonth:    prev.String(),
		RefundCount:    refundCount,
		RefundAmount:   refundAmount,
		TransferCount:  transferCount,
		TransferAmount: transferAmount,
		Ratio:          rate(float64(transferAmount), float64(refundAmount)),
	}
}

// RatioGrade classifies the transfer-to-refund ratio. A high ratio is
// bad: it means a large share of refunds escalates to collection.
func RatioGrade(ratio float64) string {
	switch {
	case ratio >= 30:
		return "danger"
	case ratio >= 20:
		return "warning"
	case ratio > 0:
		return "good"
	default:
		return ""
	}
}
