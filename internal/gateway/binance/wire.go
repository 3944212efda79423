package binance

import (
	"strconv"
	"strings"
	"time"

	"github.com/mselser95/venuehub/pkg/types"
)

type exchangeInfoResponse struct {
	Symbols []symbolInfo `json:"symbols"`
}

type symbolInfo struct {
	Symbol     string         `json:"symbol"`
	Status     string         `json:"status"`
	BaseAsset  string         `json:"baseAsset"`
	QuoteAsset string         `json:"quoteAsset"`
	Filters    []symbolFilter `json:"filters"`
}

type symbolFilter struct {
	FilterType string `json:"filterType"`
	TickSize   string `json:"tickSize,omitempty"`
	MinQty     string `json:"minQty,omitempty"`
}

type ticker24h struct {
	Symbol             string `json:"symbol"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	LastPrice          string `json:"lastPrice"`
	BidPrice           string `json:"bidPrice"`
	AskPrice           string `json:"askPrice"`
	OpenPrice          string `json:"openPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	CloseTime          int64  `json:"closeTime"`
}

type depthResponse struct {
	LastUpdateID int64       `json:"lastUpdateId"`
	Bids         [][2]string `json:"bids"`
	Asks         [][2]string `json:"asks"`
}

type tradeResponse struct {
	ID           int64  `json:"id"`
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
}

type accountResponse struct {
	UpdateTime int64            `json:"updateTime"`
	Balances   []accountBalance `json:"balances"`
}

type accountBalance struct {
	Asset  string `json:"asset"`
	Free   string `json:"free"`
	Locked string `json:"locked"`
}

type orderResponse struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	ClientOrderID       string `json:"clientOrderId"`
	Price               string `json:"price"`
	OrigQty             string `json:"origQty"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	Status              string `json:"status"`
	Type                string `json:"type"`
	Side                string `json:"side"`
	Time                int64  `json:"time"`
	TransactTime        int64  `json:"transactTime"`
}

type myTradeResponse struct {
	Symbol          string `json:"symbol"`
	ID              int64  `json:"id"`
	OrderID         int64  `json:"orderId"`
	Price           string `json:"price"`
	Qty             string `json:"qty"`
	QuoteQty        string `json:"quoteQty"`
	Commission      string `json:"commission"`
	CommissionAsset string `json:"commissionAsset"`
	Time            int64  `json:"time"`
	IsBuyer         bool   `json:"isBuyer"`
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func optFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func (s symbolInfo) toMarket() types.Market {
	m := types.Market{
		Symbol: s.BaseAsset + "/" + s.QuoteAsset,
		ID:     s.Symbol,
		Base:   s.BaseAsset,
		Quote:  s.QuoteAsset,
		Active: s.Status == "TRADING",
	}
	for _, f := range s.Filters {
		switch f.FilterType {
		case "PRICE_FILTER":
			m.TickSize = parseFloat(f.TickSize)
		case "LOT_SIZE":
			m.MinQty = parseFloat(f.MinQty)
		}
	}
	return m
}

func (t ticker24h) toTicker(market types.Market) *types.Ticker {
	last := optFloat(t.LastPrice)
	return &types.Ticker{
		Symbol:      market.Symbol,
		Base:        market.Base,
		Timestamp:   fromMillis(t.CloseTime),
		Last:        last,
		Bid:         optFloat(t.BidPrice),
		Ask:         optFloat(t.AskPrice),
		High:        optFloat(t.HighPrice),
		Low:         optFloat(t.LowPrice),
		Open:        optFloat(t.OpenPrice),
		Close:       last,
		Change:      optFloat(t.PriceChange),
		Percentage:  optFloat(t.PriceChangePercent),
		BaseVolume:  optFloat(t.Volume),
		QuoteVolume: optFloat(t.QuoteVolume),
	}
}

func toLevels(raw [][2]string) []types.PriceLevel {
	levels := make([]types.PriceLevel, 0, len(raw))
	for _, l := range raw {
		levels = append(levels, types.PriceLevel{Price: parseFloat(l[0]), Size: parseFloat(l[1])})
	}
	return levels
}

func (t tradeResponse) toTrade() types.Trade {
	// The maker being the buyer means the taker sold.
	side := types.SideBuy
	if t.IsBuyerMaker {
		side = types.SideSell
	}
	return types.Trade{
		ID:        strconv.FormatInt(t.ID, 10),
		Timestamp: fromMillis(t.Time),
		Price:     parseFloat(t.Price),
		Amount:    parseFloat(t.Qty),
		Side:      side,
	}
}

// toCandle decodes one kline row: [openTime, open, high, low, close, volume, closeTime, ...].
func toCandle(row []any) (types.Candle, bool) {
	if len(row) < 6 {
		return types.Candle{}, false
	}
	openTime, ok := row[0].(float64)
	if !ok {
		return types.Candle{}, false
	}

	field := func(i int) float64 {
		s, _ := row[i].(string)
		return parseFloat(s)
	}

	return types.Candle{
		OpenTime: fromMillis(int64(openTime)),
		Open:     field(1),
		High:     field(2),
		Low:      field(3),
		Close:    field(4),
		Volume:   field(5),
	}, true
}

var orderTypeToVenue = map[string]string{
	types.OrderTypeMarket:    "MARKET",
	types.OrderTypeLimit:     "LIMIT",
	types.OrderTypeStop:      "STOP_LOSS",
	types.OrderTypeStopLimit: "STOP_LOSS_LIMIT",
}

func orderTypeFromVenue(t string) string {
	for unified, venue := range orderTypeToVenue {
		if venue == t {
			return unified
		}
	}
	return strings.ToLower(t)
}

func orderStatusFromVenue(s string) string {
	switch s {
	case "NEW", "PARTIALLY_FILLED", "PENDING_NEW":
		return "open"
	case "FILLED":
		return "closed"
	case "CANCELED", "PENDING_CANCEL":
		return "canceled"
	case "EXPIRED", "EXPIRED_IN_MATCH":
		return "expired"
	case "REJECTED":
		return "rejected"
	default:
		return strings.ToLower(s)
	}
}

func (o orderResponse) toOrder(symbol string) types.Order {
	amount := parseFloat(o.OrigQty)
	filled := parseFloat(o.ExecutedQty)
	ts := o.Time
	if ts == 0 {
		ts = o.TransactTime
	}
	return types.Order{
		ID:            strconv.FormatInt(o.OrderID, 10),
		ClientOrderID: o.ClientOrderID,
		Symbol:        symbol,
		Type:          orderTypeFromVenue(o.Type),
		Side:          strings.ToLower(o.Side),
		Status:        orderStatusFromVenue(o.Status),
		Price:         parseFloat(o.Price),
		Amount:        amount,
		Filled:        filled,
		Remaining:     amount - filled,
		Cost:          parseFloat(o.CummulativeQuoteQty),
		Timestamp:     fromMillis(ts),
	}
}

func (t myTradeResponse) toMyTrade(symbol string) types.MyTrade {
	side := types.SideSell
	if t.IsBuyer {
		side = types.SideBuy
	}
	trade := types.MyTrade{
		ID:        strconv.FormatInt(t.ID, 10),
		OrderID:   strconv.FormatInt(t.OrderID, 10),
		Timestamp: fromMillis(t.Time),
		Symbol:    symbol,
		Side:      side,
		Amount:    parseFloat(t.Qty),
		Price:     parseFloat(t.Price),
		Cost:      parseFloat(t.QuoteQty),
	}
	if t.CommissionAsset != "" {
		trade.Fee = &types.Fee{Cost: parseFloat(t.Commission), Currency: t.CommissionAsset}
	}
	return trade
}
