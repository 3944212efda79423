package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NewError(KindNotFound, "binance", "fetch-ticker", "symbol FOO/BAR not listed", nil)
	wrapped := fmt.Errorf("get ticker: %w", err)

	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrVenueUnavailable)
	assert.Equal(t, KindNotFound, KindOf(wrapped))
}

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "venue-and-op",
			err:  NewError(KindVenueUnavailable, "kraken", "fetch-tickers", "timeout", nil),
			want: "kraken fetch-tickers: timeout (VENUE_UNAVAILABLE)",
		},
		{
			name: "cause-only",
			err:  NewError(KindInvalidArgument, "", "", "", errors.New("amount must be positive")),
			want: "amount must be positive (INVALID_ARGUMENT)",
		},
		{
			name: "bare-kind",
			err:  &Error{Kind: KindAuthenticationRequired},
			want: "AUTHENTICATION_REQUIRED (AUTHENTICATION_REQUIRED)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestKindOf_PlainError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestCredentials_Fingerprint(t *testing.T) {
	assert.Equal(t, PublicFingerprint, Credentials{}.Fingerprint())
	assert.Equal(t, "public+sandbox", Credentials{Sandbox: true}.Fingerprint())

	a := Credentials{APIKey: "k", Secret: "s"}
	b := Credentials{APIKey: "k", Secret: "s"}
	c := Credentials{APIKey: "k", Secret: "s", Sandbox: true}
	d := Credentials{APIKey: "ks", Secret: ""}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), d.Fingerprint())
	assert.True(t, a.HasKeys())
	assert.False(t, d.HasKeys())
}

func TestOrderBook_Truncate(t *testing.T) {
	ob := &OrderBook{
		Bids: []PriceLevel{{Price: 3}, {Price: 2}, {Price: 1}},
		Asks: []PriceLevel{{Price: 4}},
	}
	ob.Truncate(2)

	assert.Len(t, ob.Bids, 2)
	assert.Len(t, ob.Asks, 1)
}
