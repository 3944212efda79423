// Package trading performs authenticated account operations: balances, orders and fills.
package trading

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/internal/marketdata"
	"github.com/mselser95/venuehub/pkg/types"
)

const (
	// DefaultLimit applies to history queries that pass no limit.
	DefaultLimit = 100
	// MaxLimit bounds history queries.
	MaxLimit = 1000
)

var (
	orderTypes = map[string]bool{
		types.OrderTypeMarket:    true,
		types.OrderTypeLimit:     true,
		types.OrderTypeStop:      true,
		types.OrderTypeStopLimit: true,
	}
	orderSides = map[string]bool{
		types.SideBuy:  true,
		types.SideSell: true,
	}
)

// Acquirer resolves venue handles.
type Acquirer interface {
	Acquire(ctx context.Context, venueID string, creds types.Credentials) (gateway.Gateway, error)
}

// Config holds service configuration.
type Config struct {
	Pool   Acquirer
	Logger *zap.Logger
}

// Service runs authenticated operations through credentialed handles.
type Service struct {
	pool    Acquirer
	logger  *zap.Logger
	orderID func() string
}

// New creates the service.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pool:    cfg.Pool,
		logger:  logger,
		orderID: uuid.NewString,
	}
}

// handle returns an authenticated handle supporting op. Missing keys fail
// before the pool is touched, so no venue call is made.
func (s *Service) handle(ctx context.Context, venueID string, creds types.Credentials, op string) (gateway.Gateway, error) {
	if !creds.HasKeys() {
		return nil, types.NewError(types.KindAuthenticationRequired, gateway.NormalizeID(venueID), op,
			"API key and secret are required", nil)
	}

	g, err := s.pool.Acquire(ctx, venueID, creds)
	if err != nil {
		return nil, err
	}
	err = gateway.RequireAuth(g, op)
	if err != nil {
		return nil, err
	}
	err = gateway.Require(g, op)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// limitOrDefault maps 0 to DefaultLimit and rejects anything outside 1..MaxLimit.
func limitOrDefault(venueID, op string, limit int) (int, error) {
	if limit == 0 {
		return DefaultLimit, nil
	}
	if limit < 1 || limit > MaxLimit {
		return 0, types.InvalidArgument(venueID, op, "limit must be between 1 and %d", MaxLimit)
	}
	return limit, nil
}

// optionalSymbol normalizes symbol when present.
func optionalSymbol(venueID, op, symbol string) (string, error) {
	if strings.TrimSpace(symbol) == "" {
		return "", nil
	}
	return marketdata.NormalizeSymbol(venueID, op, symbol)
}

// GetBalance returns the account balance.
func (s *Service) GetBalance(ctx context.Context, venueID string, creds types.Credentials) (*types.Balance, error) {
	g, err := s.handle(ctx, venueID, creds, gateway.OpFetchBalance)
	if err != nil {
		return nil, err
	}

	balance, err := g.FetchBalance(ctx)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), gateway.OpFetchBalance)
	}
	return balance, nil
}

// ValidateOrder normalizes req and rejects malformed submissions.
func ValidateOrder(venueID string, req *types.OrderRequest) error {
	op := gateway.OpCreateOrder

	symbol, err := marketdata.NormalizeSymbol(venueID, op, req.Symbol)
	if err != nil {
		return err
	}
	req.Symbol = symbol
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	req.Side = strings.ToLower(strings.TrimSpace(req.Side))

	if !orderTypes[req.Type] {
		return types.InvalidArgument(venueID, op, "type must be one of market, limit, stop, stop-limit")
	}
	if !orderSides[req.Side] {
		return types.InvalidArgument(venueID, op, "side must be buy or sell")
	}
	if req.Amount <= 0 {
		return types.InvalidArgument(venueID, op, "amount must be greater than zero")
	}
	if req.Price != nil && *req.Price <= 0 {
		return types.InvalidArgument(venueID, op, "price must be greater than zero")
	}
	if (req.Type == types.OrderTypeLimit || req.Type == types.OrderTypeStopLimit) && req.Price == nil {
		return types.InvalidArgument(venueID, op, "%s orders require a price", req.Type)
	}
	return nil
}

// CreateOrder validates and submits an order. A client order id is generated
// when the request carries none.
func (s *Service) CreateOrder(ctx context.Context, venueID string, creds types.Credentials, req types.OrderRequest) (*types.Order, error) {
	op := gateway.OpCreateOrder
	err := ValidateOrder(venueID, &req)
	if err != nil {
		return nil, err
	}

	g, err := s.handle(ctx, venueID, creds, op)
	if err != nil {
		return nil, err
	}
	if _, ok := g.Markets()[req.Symbol]; !ok {
		return nil, types.NewError(types.KindNotFound, g.ID(), op, "symbol "+req.Symbol+" is not listed", nil)
	}
	if req.ClientOrderID == "" {
		req.ClientOrderID = s.orderID()
	}

	order, err := g.CreateOrder(ctx, req)
	if err != nil {
		s.logger.Warn("order-rejected",
			zap.String("venue", g.ID()),
			zap.String("symbol", req.Symbol),
			zap.String("type", req.Type),
			zap.String("side", req.Side),
			zap.String("client-order-id", req.ClientOrderID),
			zap.Error(err))
		return nil, gateway.Translate(err, g.ID(), op)
	}

	s.logger.Info("order-created",
		zap.String("venue", g.ID()),
		zap.String("symbol", req.Symbol),
		zap.String("order-id", order.ID),
		zap.String("client-order-id", req.ClientOrderID),
		zap.String("status", order.Status))

	return order, nil
}

// CancelOrder cancels an order. symbol may be empty for venues that do not need it.
func (s *Service) CancelOrder(ctx context.Context, venueID string, creds types.Credentials, orderID, symbol string) (*types.Order, error) {
	op := gateway.OpCancelOrder
	if strings.TrimSpace(orderID) == "" {
		return nil, types.InvalidArgument(venueID, op, "order id is required")
	}
	symbol, err := optionalSymbol(venueID, op, symbol)
	if err != nil {
		return nil, err
	}

	g, err := s.handle(ctx, venueID, creds, op)
	if err != nil {
		return nil, err
	}

	order, err := g.CancelOrder(ctx, orderID, symbol)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), op)
	}

	s.logger.Info("order-canceled",
		zap.String("venue", g.ID()),
		zap.String("order-id", orderID))

	return order, nil
}

// GetOrder returns one order.
func (s *Service) GetOrder(ctx context.Context, venueID string, creds types.Credentials, orderID, symbol string) (*types.Order, error) {
	op := gateway.OpFetchOrder
	if strings.TrimSpace(orderID) == "" {
		return nil, types.InvalidArgument(venueID, op, "order id is required")
	}
	symbol, err := optionalSymbol(venueID, op, symbol)
	if err != nil {
		return nil, err
	}

	g, err := s.handle(ctx, venueID, creds, op)
	if err != nil {
		return nil, err
	}

	order, err := g.FetchOrder(ctx, orderID, symbol)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), op)
	}
	return order, nil
}

// GetOrderStatus summarizes the progress of one order.
func (s *Service) GetOrderStatus(ctx context.Context, venueID string, creds types.Credentials, orderID, symbol string) (*types.OrderStatus, error) {
	order, err := s.GetOrder(ctx, venueID, creds, orderID, symbol)
	if err != nil {
		return nil, err
	}
	return &types.OrderStatus{
		ID:        order.ID,
		Symbol:    order.Symbol,
		Status:    order.Status,
		Filled:    order.Filled,
		Remaining: order.Remaining,
		Timestamp: order.Timestamp,
	}, nil
}

// GetOrders returns order history.
func (s *Service) GetOrders(ctx context.Context, venueID string, creds types.Credentials, symbol string, limit int) ([]types.Order, error) {
	op := gateway.OpFetchOrders
	symbol, err := optionalSymbol(venueID, op, symbol)
	if err != nil {
		return nil, err
	}
	limit, err = limitOrDefault(venueID, op, limit)
	if err != nil {
		return nil, err
	}

	g, err := s.handle(ctx, venueID, creds, op)
	if err != nil {
		return nil, err
	}

	orders, err := g.FetchOrders(ctx, symbol, limit)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), op)
	}
	return orders, nil
}

// GetOpenOrders returns orders still working on the venue.
func (s *Service) GetOpenOrders(ctx context.Context, venueID string, creds types.Credentials, symbol string) ([]types.Order, error) {
	op := gateway.OpFetchOpenOrders
	symbol, err := optionalSymbol(venueID, op, symbol)
	if err != nil {
		return nil, err
	}

	g, err := s.handle(ctx, venueID, creds, op)
	if err != nil {
		return nil, err
	}

	orders, err := g.FetchOpenOrders(ctx, symbol)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), op)
	}
	return orders, nil
}

// GetMyTrades returns the account's own fills.
func (s *Service) GetMyTrades(ctx context.Context, venueID string, creds types.Credentials, symbol string, limit int) ([]types.MyTrade, error) {
	op := gateway.OpFetchMyTrades
	symbol, err := optionalSymbol(venueID, op, symbol)
	if err != nil {
		return nil, err
	}
	limit, err = limitOrDefault(venueID, op, limit)
	if err != nil {
		return nil, err
	}

	g, err := s.handle(ctx, venueID, creds, op)
	if err != nil {
		return nil, err
	}

	trades, err := g.FetchMyTrades(ctx, symbol, limit)
	if err != nil {
		return nil, gateway.Translate(err, g.ID(), op)
	}
	return trades, nil
}
