package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// StoreConfig configures the two-tier store.
type StoreConfig struct {
	Remote Remote  // shared tier, nil runs on the in-process tier only
	Local  *Memory // in-process tier, created with defaults when nil
	Logger *zap.Logger
}

// Store is the two-tier result cache. Every call tries the shared tier first and
// falls back to the in-process tier for the rest of that call if it fails.
// There is no sticky "disabled" state: the next call probes the shared tier again.
//
// Values handed to Put must not be mutated afterwards; the in-process tier keeps
// them as-is and returns the same value to every reader.
type Store struct {
	remote  Remote
	local   *Memory
	healthy atomic.Bool
	logger  *zap.Logger
}

// NewStore creates a two-tier store.
func NewStore(cfg StoreConfig) *Store {
	local := cfg.Local
	if local == nil {
		local = NewMemory(MemoryConfig{})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Store{
		remote: cfg.Remote,
		local:  local,
		logger: logger,
	}
	if s.remote != nil {
		s.healthy.Store(true)
		CacheTier1Healthy.Set(1)
	}

	return s
}

// HasRemote reports whether a shared tier is configured.
func (s *Store) HasRemote() bool {
	return s.remote != nil
}

// Tier1Healthy reports whether the most recent shared-tier call succeeded.
func (s *Store) Tier1Healthy() bool {
	return s.healthy.Load()
}

// Local exposes the in-process tier.
func (s *Store) Local() *Memory {
	return s.local
}

// Close releases the shared tier connection.
func (s *Store) Close() error {
	if s.remote == nil {
		return nil
	}
	return s.remote.Close()
}

func (s *Store) markHealthy() {
	if !s.healthy.Swap(true) {
		CacheTier1Healthy.Set(1)
		s.logger.Info("cache-tier1-recovered")
	}
}

func (s *Store) markUnhealthy(op, key string, err error) {
	CacheFallbacksTotal.WithLabelValues(op).Inc()
	if s.healthy.Swap(false) {
		CacheTier1Healthy.Set(0)
		s.logger.Warn("cache-tier1-unavailable",
			zap.String("op", op),
			zap.String("key", key),
			zap.Error(err))
		return
	}
	s.logger.Debug("cache-tier1-fallback",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err))
}

// Fetch returns the live value stored under key. A miss, an expired entry or a
// value that cannot be decoded into T all report (zero, false); cache failures
// are never surfaced.
func Fetch[T any](ctx context.Context, s *Store, key string) (T, bool) {
	var zero T

	if s.remote != nil {
		raw, err := s.remote.Get(ctx, key)
		switch {
		case err == nil:
			s.markHealthy()

			var value T
			decodeErr := json.Unmarshal(raw, &value)
			if decodeErr != nil {
				s.logger.Warn("cache-decode-failed",
					zap.String("key", key),
					zap.Error(decodeErr))
				CacheMissesTotal.WithLabelValues(tierRemote).Inc()
				return zero, false
			}

			CacheHitsTotal.WithLabelValues(tierRemote).Inc()
			return value, true

		case errors.Is(err, ErrMiss):
			s.markHealthy()
			CacheMissesTotal.WithLabelValues(tierRemote).Inc()
			return zero, false

		default:
			s.markUnhealthy("get", key, err)
		}
	}

	stored, ok := s.local.Get(key)
	if !ok {
		CacheMissesTotal.WithLabelValues(tierLocal).Inc()
		return zero, false
	}

	value, ok := stored.(T)
	if !ok {
		CacheMissesTotal.WithLabelValues(tierLocal).Inc()
		return zero, false
	}

	CacheHitsTotal.WithLabelValues(tierLocal).Inc()
	return value, true
}

// Put stores value under key for ttl, on the shared tier when reachable and on
// the in-process tier otherwise.
func Put[T any](ctx context.Context, s *Store, key string, value T, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	if s.remote != nil {
		raw, err := json.Marshal(value)
		if err != nil {
			// Not a tier failure: the value is simply not encodable for the shared tier.
			s.logger.Warn("cache-encode-failed", zap.String("key", key), zap.Error(err))
		} else {
			err = s.remote.Set(ctx, key, raw, ttl)
			if err == nil {
				s.markHealthy()
				CacheSetsTotal.WithLabelValues(tierRemote).Inc()
				return
			}
			s.markUnhealthy("set", key, err)
		}
	}

	s.local.Set(key, value, ttl)
	CacheSetsTotal.WithLabelValues(tierLocal).Inc()
}
