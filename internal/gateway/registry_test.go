package gateway

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mselser95/venuehub/pkg/types"
)

func failingConstructor(err error) Constructor {
	return func(context.Context, types.Credentials) (Gateway, error) {
		return nil, err
	}
}

func TestRegistry_Ordering(t *testing.T) {
	r := NewRegistry(
		Descriptor{ID: "Kraken", Name: "Kraken"},
		Descriptor{ID: "binance", Name: "Binance"},
		Descriptor{ID: "binanceus", Name: "Binance US"},
	)

	assert.Equal(t, []string{"binance", "binanceus", "kraken"}, r.IDs())

	descs := r.Descriptors()
	require.Len(t, descs, 3)
	assert.Equal(t, "Binance", descs[0].Name)
	assert.Equal(t, "Binance US", descs[1].Name)
	assert.Equal(t, "Kraken", descs[2].Name)

	assert.True(t, r.Supports(" KRAKEN "))
	assert.False(t, r.Supports("mtgox"))
}

func TestRegistry_New(t *testing.T) {
	r := NewRegistry(Descriptor{
		ID:          "down",
		Constructor: failingConstructor(fmt.Errorf("load markets: %w", ErrNetwork)),
	})

	t.Run("unsupported-venue", func(t *testing.T) {
		_, err := r.New(context.Background(), "mtgox", types.Credentials{})
		assert.ErrorIs(t, err, types.ErrUnsupportedVenue)
	})

	t.Run("construction-failure-is-translated", func(t *testing.T) {
		_, err := r.New(context.Background(), "down", types.Credentials{})
		assert.ErrorIs(t, err, types.ErrVenueUnavailable)
		assert.ErrorIs(t, err, ErrNetwork)
	})
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want types.ErrorKind
	}{
		{"network", fmt.Errorf("do request: %w", ErrNetwork), types.KindVenueUnavailable},
		{"auth", fmt.Errorf("code -2015: %w", ErrAuthentication), types.KindAuthenticationRequired},
		{"not-found", fmt.Errorf("code -1121: %w", ErrNotFound), types.KindNotFound},
		{"rejected", fmt.Errorf("code -1013: %w", ErrRejected), types.KindInvalidArgument},
		{"deadline", context.DeadlineExceeded, types.KindVenueUnavailable},
		{"unknown", errors.New("something odd"), types.KindVenueUnavailable},
		{"already-domain", types.InvalidArgument("binance", "createOrder", "bad"), types.KindInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Translate(tt.err, "binance", "fetchTicker")
			assert.Equal(t, tt.want, types.KindOf(err))
		})
	}

	assert.NoError(t, Translate(nil, "binance", "fetchTicker"))
}

func TestCapabilities(t *testing.T) {
	c := Capabilities{FetchTicker: true, FetchTickers: true}

	assert.True(t, c.Supports(OpFetchTickers))
	assert.False(t, c.Supports(OpFetchOHLCV))
	assert.False(t, c.Supports("teleport"))
	assert.Len(t, c.Map(), 12)
}
