package types

import "time"

// Holding is one non-zero currency of a portfolio with its reference value.
type Holding struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
	Free     float64 `json:"free"`
	Used     float64 `json:"used"`
	Value    float64 `json:"value"`
}

// AssetWarning records why an asset contributed zero value.
type AssetWarning struct {
	Currency string `json:"currency"`
	Reason   string `json:"reason"`
}

// Portfolio is the valued balance of an account.
type Portfolio struct {
	Exchange   string         `json:"exchange"`
	Timestamp  time.Time      `json:"timestamp"`
	Reference  string         `json:"reference_currency"`
	Holdings   []Holding      `json:"currencies"`
	TotalValue float64        `json:"total_value"`
	Warnings   []AssetWarning `json:"warnings,omitempty"`
}

// Position is a spot balance presented as a long position.
type Position struct {
	Symbol        string    `json:"symbol"`
	Side          string    `json:"side"`
	Size          float64   `json:"size"`
	UnrealizedPnL float64   `json:"unrealized_pnl"`
	Timestamp     time.Time `json:"timestamp"`
}

// Positions wraps the positions of one venue account.
type Positions struct {
	Exchange  string     `json:"exchange"`
	Timestamp time.Time  `json:"timestamp"`
	Positions []Position `json:"positions"`
}

// TradingHistory summarizes recent own trades.
type TradingHistory struct {
	Exchange         string    `json:"exchange"`
	Symbol           string    `json:"symbol"`
	TotalTrades      int       `json:"total_trades"`
	TotalVolume      float64   `json:"total_volume"`
	TotalFees        float64   `json:"total_fees"`
	AverageTradeSize float64   `json:"average_trade_size"`
	Trades           []MyTrade `json:"trades"`
}

// ProfitLoss is a running cost total by side. It does no lot matching
// and is reported as an approximation.
type ProfitLoss struct {
	Exchange    string  `json:"exchange"`
	Symbol      string  `json:"symbol"`
	Trades      int     `json:"trades"`
	RealizedPnL float64 `json:"realized_pnl"`
	TotalFees   float64 `json:"total_fees"`
	NetPnL      float64 `json:"net_pnl"`
	Approximate bool    `json:"approximate"`
}
