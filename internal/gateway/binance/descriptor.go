package binance

import (
	"context"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/pkg/types"
)

// Timeframes are the kline intervals the venue accepts.
var Timeframes = []string{
	"1m", "3m", "5m", "15m", "30m",
	"1h", "2h", "4h", "6h", "8h", "12h",
	"1d", "3d", "1w", "1M",
}

// Default endpoints.
const (
	DefaultBaseURL   = "https://api.binance.com"
	DefaultUSBaseURL = "https://api.binance.us"
	DefaultTestnet   = "https://testnet.binance.vision"
)

// Descriptor returns the registry entry for the global venue.
func Descriptor(cfg Config) gateway.Descriptor {
	if cfg.ID == "" {
		cfg.ID = "binance"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	return gateway.Descriptor{
		ID:        cfg.ID,
		Name:      "Binance",
		Countries: []string{"JP", "MT"},
		URLs: types.ExchangeURLs{
			WWW: "https://www.binance.com",
			Doc: "https://developers.binance.com/docs/binance-spot-api-docs",
			API: cfg.BaseURL,
		},
		RateLimit:    50,
		Certified:    true,
		Description:  "Binance is the largest cryptocurrency exchange by trading volume, offering spot trading across hundreds of assets.",
		Founded:      2017,
		Timeframes:   Timeframes,
		Capabilities: allCapabilities,
		Constructor:  constructor(cfg),
	}
}

// USDescriptor returns the registry entry for the US venue. It has no sandbox.
func USDescriptor(cfg Config) gateway.Descriptor {
	if cfg.ID == "" {
		cfg.ID = "binanceus"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultUSBaseURL
	}
	cfg.TestnetURL = ""

	return gateway.Descriptor{
		ID:        cfg.ID,
		Name:      "Binance US",
		Countries: []string{"US"},
		URLs: types.ExchangeURLs{
			WWW: "https://www.binance.us",
			Doc: "https://docs.binance.us",
			API: cfg.BaseURL,
		},
		RateLimit:    50,
		Certified:    false,
		Description:  "Binance.US is the United States affiliate of Binance, operating a regulated spot market for US residents.",
		Founded:      2019,
		Timeframes:   Timeframes,
		Capabilities: allCapabilities,
		Constructor:  constructor(cfg),
	}
}

func constructor(cfg Config) gateway.Constructor {
	return func(ctx context.Context, creds types.Credentials) (gateway.Gateway, error) {
		return New(ctx, cfg, creds)
	}
}
