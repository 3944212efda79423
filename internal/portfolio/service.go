// Package portfolio values account balances and summarizes trading activity.
package portfolio

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mselser95/venuehub/pkg/types"
)

const (
	// DefaultQuote prices holdings that are not unit-valued.
	DefaultQuote = "USDT"

	// HistoryLimit is how many recent fills history and PnL look at.
	HistoryLimit = 100

	priceLookupConcurrency = 8
)

// unitValued currencies are counted one-for-one in the reference unit.
var unitValued = map[string]bool{"USD": true, "USDT": true, "USDC": true}

// Account supplies authenticated account data.
type Account interface {
	GetBalance(ctx context.Context, venueID string, creds types.Credentials) (*types.Balance, error)
	GetMyTrades(ctx context.Context, venueID string, creds types.Credentials, symbol string, limit int) ([]types.MyTrade, error)
}

// Prices supplies tickers.
type Prices interface {
	GetTicker(ctx context.Context, venueID, symbol string) (*types.Ticker, error)
}

// Config holds service configuration.
type Config struct {
	Account Account
	Prices  Prices
	Quote   string // reference currency for valuation (default USDT)
	Logger  *zap.Logger
}

// Service builds portfolio views.
type Service struct {
	account Account
	prices  Prices
	quote   string
	logger  *zap.Logger
	now     func() time.Time
}

// New creates the service.
func New(cfg Config) *Service {
	s := &Service{
		account: cfg.Account,
		prices:  cfg.Prices,
		quote:   strings.ToUpper(strings.TrimSpace(cfg.Quote)),
		logger:  cfg.Logger,
		now:     time.Now,
	}
	if s.quote == "" {
		s.quote = DefaultQuote
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}

// nonZero returns the currencies with a positive total, sorted by code.
func nonZero(balance *types.Balance) []string {
	codes := make([]string, 0, len(balance.Currencies))
	for code, entry := range balance.Currencies {
		if entry.Total > 0 {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// GetPortfolio values every non-zero holding in the reference currency. A
// holding whose price cannot be resolved contributes zero and is listed in
// Warnings; it never fails the whole valuation.
func (s *Service) GetPortfolio(ctx context.Context, venueID string, creds types.Credentials) (*types.Portfolio, error) {
	balance, err := s.account.GetBalance(ctx, venueID, creds)
	if err != nil {
		return nil, err
	}

	codes := nonZero(balance)
	holdings := make([]types.Holding, len(codes))
	warnings := make([]*types.AssetWarning, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(priceLookupConcurrency)
	for i, code := range codes {
		entry := balance.Currencies[code]
		holdings[i] = types.Holding{
			Currency: code,
			Total:    entry.Total,
			Free:     entry.Free,
			Used:     entry.Used,
		}

		if code == s.quote || unitValued[code] {
			holdings[i].Value = entry.Total
			continue
		}

		g.Go(func() error {
			price, reason := s.price(gctx, venueID, code)
			if reason != "" {
				warnings[i] = &types.AssetWarning{Currency: code, Reason: reason}
				s.logger.Warn("portfolio-price-unavailable",
					zap.String("venue", venueID),
					zap.String("currency", code),
					zap.String("reason", reason))
				return nil
			}
			holdings[i].Value = decimal.NewFromFloat(entry.Total).Mul(price).InexactFloat64()
			return nil
		})
	}
	_ = g.Wait() // lookups never return errors

	total := decimal.Zero
	for _, h := range holdings {
		total = total.Add(decimal.NewFromFloat(h.Value))
	}

	portfolio := &types.Portfolio{
		Exchange:   venueID,
		Timestamp:  s.now().UTC(),
		Reference:  s.quote,
		Holdings:   holdings,
		TotalValue: total.InexactFloat64(),
	}
	for _, w := range warnings {
		if w != nil {
			portfolio.Warnings = append(portfolio.Warnings, *w)
		}
	}
	return portfolio, nil
}

// price resolves code in the reference currency. A non-empty reason means no price.
func (s *Service) price(ctx context.Context, venueID, code string) (decimal.Decimal, string) {
	ticker, err := s.prices.GetTicker(ctx, venueID, code+"/"+s.quote)
	if err != nil {
		return decimal.Zero, err.Error()
	}
	if ticker.Last == nil {
		return decimal.Zero, "venue reported no last price for " + ticker.Symbol
	}
	return decimal.NewFromFloat(*ticker.Last), ""
}

// GetPositions presents non-zero spot balances as long positions.
func (s *Service) GetPositions(ctx context.Context, venueID string, creds types.Credentials) (*types.Positions, error) {
	balance, err := s.account.GetBalance(ctx, venueID, creds)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	codes := nonZero(balance)
	positions := make([]types.Position, 0, len(codes))
	for _, code := range codes {
		positions = append(positions, types.Position{
			Symbol:    code,
			Side:      "long",
			Size:      balance.Currencies[code].Total,
			Timestamp: now,
		})
	}

	return &types.Positions{
		Exchange:  venueID,
		Timestamp: now,
		Positions: positions,
	}, nil
}

func feeOf(t types.MyTrade) decimal.Decimal {
	if t.Fee == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(t.Fee.Cost)
}

func symbolLabel(symbol string) string {
	if symbol == "" {
		return "ALL"
	}
	return symbol
}

// GetTradingHistory summarizes the most recent fills.
func (s *Service) GetTradingHistory(ctx context.Context, venueID string, creds types.Credentials, symbol string) (*types.TradingHistory, error) {
	trades, err := s.account.GetMyTrades(ctx, venueID, creds, symbol, HistoryLimit)
	if err != nil {
		return nil, err
	}

	volume := decimal.Zero
	fees := decimal.Zero
	for _, t := range trades {
		volume = volume.Add(decimal.NewFromFloat(t.Cost))
		fees = fees.Add(feeOf(t))
	}

	average := decimal.Zero
	if len(trades) > 0 {
		average = volume.Div(decimal.NewFromInt(int64(len(trades))))
	}

	return &types.TradingHistory{
		Exchange:         venueID,
		Symbol:           symbolLabel(symbol),
		TotalTrades:      len(trades),
		TotalVolume:      volume.InexactFloat64(),
		TotalFees:        fees.InexactFloat64(),
		AverageTradeSize: average.InexactFloat64(),
		Trades:           trades,
	}, nil
}

// GetProfitLoss sums sell proceeds minus buy costs over the most recent fills.
// There is no lot matching, so the figure is flagged approximate.
func (s *Service) GetProfitLoss(ctx context.Context, venueID string, creds types.Credentials, symbol string) (*types.ProfitLoss, error) {
	trades, err := s.account.GetMyTrades(ctx, venueID, creds, symbol, HistoryLimit)
	if err != nil {
		return nil, err
	}

	realized := decimal.Zero
	fees := decimal.Zero
	for _, t := range trades {
		cost := decimal.NewFromFloat(t.Cost)
		if t.Side == types.SideSell {
			realized = realized.Add(cost)
		} else {
			realized = realized.Sub(cost)
		}
		fees = fees.Add(feeOf(t))
	}

	return &types.ProfitLoss{
		Exchange:    venueID,
		Symbol:      symbolLabel(symbol),
		Trades:      len(trades),
		RealizedPnL: realized.InexactFloat64(),
		TotalFees:   fees.InexactFloat64(),
		NetPnL:      realized.Sub(fees).InexactFloat64(),
		Approximate: true,
	}, nil
}
