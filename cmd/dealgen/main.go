package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"kpideck/internal/feed"
	"kpideck/internal/kst"
)

// dealgen emits a synthetic deal feed payload in the shape the live
// sheet endpoint returns. Point FEED_URL at a static server hosting
// the output to run the dashboard without the real sheet.

type envelope struct {
	Success bool           `json:"success"`
	Data    []feed.DealDTO `json:"data"`
}

func main() {
	count := flag.Int("count", 120, "Number of deals to generate")
	days := flag.Int("days", 365, "Spread won times over the trailing N days")
	paidRatio := flag.Float64("paid", 0.7, "Fraction of deals that received a payment notice")
	out := flag.String("out", "deals.json", "Output file, or - for stdout")
	seed := flag.Int64("seed", 0, "Random seed, 0 for time-based")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	now := time.Now().In(kst.Zone)
	deals := make([]feed.DealDTO, 0, *count)

	for i := 0; i < *count; i++ {
		value := int64(500_000 + rng.Intn(50)*100_000)
		order := now.AddDate(0, 0, -rng.Intn(*days))

		dto := feed.DealDTO{
			ID:                  feed.FlexInt(i + 1),
			Title:               fmt.Sprintf("거래-%04d", i+1),
			PersonName:          fmt.Sprintf("고객-%04d", i+1),
			Value:               feed.FlexInt(value),
			CollectionOrderDate: order.Format("2006-01-02"),
		}

		if rng.Float64() < *paidRatio {
			// Notice shortly after the order, payment 0..40 days later.
			notice := order.AddDate(0, 0, rng.Intn(5))
			won := notice.AddDate(0, 0, rng.Intn(41))
			dto.FirstPaymentNotice = notice.Format("2006-01-02")
			if won.Before(now) {
				dto.WonTime = won.Format("2006-01-02") + " 14:30:00"
			}
		}

		deals = append(deals, dto)
	}

	payload, err := json.MarshalIndent(envelope{Success: true, Data: deals}, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to encode deals: %v\n", err)
		os.Exit(1)
	}

	if *out == "-" {
		fmt.Println(string(payload))
		return
	}

	if err := os.WriteFile(*out, payload, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("Generated %d deals (seed %d) to %s\n", len(deals), *seed, *out)
}
