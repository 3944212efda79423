package types

import "time"

// Order types accepted by CreateOrder.
const (
	OrderTypeMarket    = "market"
	OrderTypeLimit     = "limit"
	OrderTypeStop      = "stop"
	OrderTypeStopLimit = "stop-limit"
)

// Order sides.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// BalanceEntry holds the amounts of one currency.
type BalanceEntry struct {
	Free  float64 `json:"free"`
	Used  float64 `json:"used"`
	Total float64 `json:"total"`
}

// Balance is the account balance keyed by currency code.
type Balance struct {
	Timestamp  time.Time               `json:"timestamp"`
	Currencies map[string]BalanceEntry `json:"currencies"`
}

// OrderRequest is a validated order submission.
type OrderRequest struct {
	Symbol        string         `json:"symbol"`
	Type          string         `json:"type"`
	Side          string         `json:"side"`
	Amount        float64        `json:"amount"`
	Price         *float64       `json:"price,omitempty"`
	ClientOrderID string         `json:"client_order_id,omitempty"`
	Params        map[string]any `json:"params,omitempty"`
}

// Order is an order as reported by the venue.
type Order struct {
	ID            string    `json:"id"`
	ClientOrderID string    `json:"client_order_id,omitempty"`
	Symbol        string    `json:"symbol"`
	Type          string    `json:"type"`
	Side          string    `json:"side"`
	Status        string    `json:"status"`
	Price         float64   `json:"price"`
	Amount        float64   `json:"amount"`
	Filled        float64   `json:"filled"`
	Remaining     float64   `json:"remaining"`
	Cost          float64   `json:"cost"`
	Timestamp     time.Time `json:"timestamp"`
}

// OrderStatus is the progress summary of one order.
type OrderStatus struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Status    string    `json:"status"`
	Filled    float64   `json:"filled"`
	Remaining float64   `json:"remaining"`
	Timestamp time.Time `json:"timestamp"`
}
