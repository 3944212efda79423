package types

import "time"

// Market is one tradable instrument from a venue's catalog, in unified "BASE/QUOTE" form.
type Market struct {
	Symbol   string  `json:"symbol"`
	ID       string  `json:"id"` // venue-native symbol, e.g. BTCUSDT
	Base     string  `json:"base"`
	Quote    string  `json:"quote"`
	Active   bool    `json:"active"`
	TickSize float64 `json:"tick_size,omitempty"`
	MinQty   float64 `json:"min_qty,omitempty"`
}

// Ticker is a 24h rolling snapshot for one symbol.
// Pointer fields are nil when the venue does not report them.
type Ticker struct {
	Symbol      string    `json:"symbol"`
	Base        string    `json:"base,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	Last        *float64  `json:"last"`
	Bid         *float64  `json:"bid"`
	Ask         *float64  `json:"ask"`
	High        *float64  `json:"high"`
	Low         *float64  `json:"low"`
	Open        *float64  `json:"open"`
	Close       *float64  `json:"close"`
	Change      *float64  `json:"change"`
	Percentage  *float64  `json:"percentage"`
	BaseVolume  *float64  `json:"base_volume"`
	QuoteVolume *float64  `json:"quote_volume"`
}

// Candle is one OHLCV bar.
type Candle struct {
	OpenTime time.Time `json:"open_time"`
	Open     float64   `json:"open"`
	High     float64   `json:"high"`
	Low      float64   `json:"low"`
	Close    float64   `json:"close"`
	Volume   float64   `json:"volume"`
}

// ExchangeSummary is the short per-venue record returned by the listing endpoint.
type ExchangeSummary struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Countries    []string        `json:"countries"`
	URLs         ExchangeURLs    `json:"urls"`
	Capabilities map[string]bool `json:"has"`
	RateLimit    int             `json:"rate_limit"`
	Certified    bool            `json:"certified"`
}

// ExchangeURLs holds the public links of a venue.
type ExchangeURLs struct {
	WWW string `json:"www,omitempty"`
	Doc string `json:"doc,omitempty"`
	API string `json:"api,omitempty"`
}

// ExchangeInfo is the detailed descriptor of a venue.
type ExchangeInfo struct {
	ExchangeSummary
	Description string   `json:"description"`
	Founded     int      `json:"founded,omitempty"`
	Status      string   `json:"status"`
	Timeframes  []string `json:"timeframes"`
	Markets     []string `json:"markets"`
}

// Currency is a single asset code appearing in a venue's catalog.
type Currency struct {
	Code        string `json:"code"`
	MarketCount int    `json:"market_count"`
}
