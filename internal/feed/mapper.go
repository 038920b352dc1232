package feed

import (
	"kpideck/internal/deal"
	"kpideck/internal/kst"
)

// MapDeal transforms a feed DTO into a domain deal. Date columns that
// are empty or unparseable map to nil; downstream aggregation routes
// those deals to explicit no-date buckets.
func MapDeal(item DealDTO) deal.Deal {
	d := deal.Deal{
		ID:    int64(item.ID),
		Name:  item.PersonName,
		Value: int64(item.Value),
	}
	if d.Name == "" {
		d.Name = item.Title
	}

	if t, ok := kst.Parse(item.WonTime); ok {
		d.WonTime = &t
	}
	if t, ok := kst.Parse(item.FirstPaymentNotice); ok {
		d.FirstPaymentNotice = &t
	}
	if t, ok := kst.Parse(item.CollectionOrderDate); ok {
		d.CollectionOrderDate = &t
	}

	return d
}

// MapDeals maps a full feed response.
func MapDeals(items []DealDTO) []deal.Deal {
	deals := make([]deal.Deal, 0, len(items))
	for _, item := range items {
		deals = append(deals, MapDeal(item))
	}
	return deals
}
