package types

import "time"

// Trade is one public trade print.
type Trade struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"`
	Side      string    `json:"side"` // "buy" or "sell", taker side
}

// Fee is the commission charged on an own trade.
type Fee struct {
	Cost     float64 `json:"cost"`
	Currency string  `json:"currency"`
}

// MyTrade is a fill belonging to the authenticated account.
type MyTrade struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Amount    float64   `json:"amount"`
	Price     float64   `json:"price"`
	Cost      float64   `json:"cost"`
	Fee       *Fee      `json:"fee,omitempty"`
}
