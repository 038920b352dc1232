// Package deal defines the normalized deal record every aggregation
// consumes. Records are produced by the feed mapper and treated as
// read-only for the duration of an aggregation pass.
package deal

import "time"

// Deal is one sales/collection case from the remote feed. Date fields
// are nil when the source column is empty or unparseable; aggregations
// route such deals to explicit unpaid/no-date buckets instead of
// dropping them.
type Deal struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Value               int64      `json:"value"`
	WonTime             *time.Time `json:"wonTime,omitempty"`
	FirstPaymentNotice  *time.Time `json:"firstPaymentNotice,omitempty"`
	CollectionOrderDate *time.Time `json:"collectionOrderDate,omitempty"`
}

// Sum returns the total Value over deals.
func Sum(deals []Deal) int64 {
	var total int64
	for _, d := range deals {
		total += d.Value
	}
	return total
}
