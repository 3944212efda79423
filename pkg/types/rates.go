package types

import "time"

// AggregatedRate is one asset priced in the reference currency.
type AggregatedRate struct {
	Asset            string    `json:"asset"`
	Symbol           string    `json:"symbol"`
	Price            *float64  `json:"price"`
	Bid              *float64  `json:"bid"`
	Ask              *float64  `json:"ask"`
	Change24h        *float64  `json:"change_24h"`
	PercentChange24h *float64  `json:"percentage_change_24h"`
	VolumeBase       *float64  `json:"volume_24h"`
	VolumeReference  *float64  `json:"volume_reference_24h"`
	High             *float64  `json:"high_24h"`
	Low              *float64  `json:"low_24h"`
	Timestamp        time.Time `json:"timestamp"`
}

// RatesSnapshot is the result of one top-rates aggregation.
type RatesSnapshot struct {
	Exchange   string           `json:"exchange"`
	Timestamp  time.Time        `json:"timestamp"`
	TotalPairs int              `json:"total_pairs"`
	Rates      []AggregatedRate `json:"rates"`
}
