package types

import "time"

// PriceLevel is one (price, size) pair of an order book side.
type PriceLevel struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook is a depth snapshot. Bids are sorted best (highest) first, asks best (lowest) first.
type OrderBook struct {
	Exchange  string       `json:"exchange"`
	Symbol    string       `json:"symbol"`
	Timestamp time.Time    `json:"timestamp"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
}

// Truncate caps both sides at limit levels.
func (o *OrderBook) Truncate(limit int) {
	if limit <= 0 {
		return
	}
	if len(o.Bids) > limit {
		o.Bids = o.Bids[:limit]
	}
	if len(o.Asks) > limit {
		o.Asks = o.Asks[:limit]
	}
}
