package gateway

import (
	"context"
	"errors"

	"github.com/mselser95/venuehub/pkg/types"
)

// Failure categories drivers must wrap their errors in.
var (
	ErrNetwork        = errors.New("venue network error")
	ErrRejected       = errors.New("venue rejected request")
	ErrAuthentication = errors.New("venue authentication failed")
	ErrNotFound       = errors.New("venue reports not found")
)

// Translate maps a driver error to the domain taxonomy, keeping venue and
// operation for context. Errors that already carry a category pass through.
func Translate(err error, venue, op string) error {
	if err == nil {
		return nil
	}

	var domainErr *types.Error
	if errors.As(err, &domainErr) {
		return err
	}

	kind := types.KindVenueUnavailable
	switch {
	case errors.Is(err, ErrAuthentication):
		kind = types.KindAuthenticationRequired
	case errors.Is(err, ErrNotFound):
		kind = types.KindNotFound
	case errors.Is(err, ErrRejected):
		kind = types.KindInvalidArgument
	case errors.Is(err, ErrNetwork),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		kind = types.KindVenueUnavailable
	}

	return types.NewError(kind, venue, op, err.Error(), err)
}
