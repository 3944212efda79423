// Package pool memoizes venue gateway handles keyed by venue and credential fingerprint.
package pool

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mselser95/venuehub/internal/gateway"
	"github.com/mselser95/venuehub/pkg/cache"
	"github.com/mselser95/venuehub/pkg/types"
)

const defaultBuildTimeout = 30 * time.Second

// Venues reports which venue identifiers may be acquired.
type Venues interface {
	Supports(id string) bool
}

// Config holds pool configuration.
type Config struct {
	Factory      gateway.Factory
	Venues       Venues
	BuildTimeout time.Duration // bound on a single construction (default 30s)

	// Credentialed holds handles built with API keys. When nil they are kept
	// for the process lifetime alongside public handles.
	Credentialed    cache.Cache
	CredentialedTTL time.Duration // idle lifetime in Credentialed, 0 means no expiry

	Logger *zap.Logger
}

// Pool hands out shared gateway handles. At most one construction runs per key;
// constructions for different keys never wait on each other.
type Pool struct {
	factory         gateway.Factory
	venues          Venues
	buildTimeout    time.Duration
	public          sync.Map // key -> gateway.Gateway
	credentialed    cache.Cache
	credentialedTTL time.Duration
	inflight        singleflight.Group
	logger          *zap.Logger
}

// New creates a pool.
func New(cfg Config) *Pool {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	buildTimeout := cfg.BuildTimeout
	if buildTimeout <= 0 {
		buildTimeout = defaultBuildTimeout
	}

	return &Pool{
		factory:         cfg.Factory,
		venues:          cfg.Venues,
		buildTimeout:    buildTimeout,
		credentialed:    cfg.Credentialed,
		credentialedTTL: cfg.CredentialedTTL,
		logger:          logger,
	}
}

// Key returns the pool key of a venue and credential set.
func Key(venueID string, creds types.Credentials) string {
	return gateway.NormalizeID(venueID) + "|" + creds.Fingerprint()
}

func isPublic(key string) bool {
	_, fingerprint, _ := strings.Cut(key, "|")
	return strings.HasPrefix(fingerprint, types.PublicFingerprint)
}

func (p *Pool) lookup(key string) (gateway.Gateway, bool) {
	if p.credentialed != nil && !isPublic(key) {
		v, ok := p.credentialed.Get(key)
		if !ok {
			return nil, false
		}
		g, ok := v.(gateway.Gateway)
		return g, ok
	}

	v, ok := p.public.Load(key)
	if !ok {
		return nil, false
	}
	return v.(gateway.Gateway), true
}

func (p *Pool) store(key string, g gateway.Gateway) {
	if p.credentialed != nil && !isPublic(key) {
		if !p.credentialed.Set(key, g, p.credentialedTTL) {
			p.logger.Debug("pool-handle-not-admitted", zap.String("key", redact(key)))
			return
		}
		p.credentialed.Wait()
		return
	}

	p.public.Store(key, g)
	PoolHandles.Inc()
}

// Acquire returns the handle for (venueID, creds), building it on first use.
// Callers arriving while a construction for the same key is in flight wait for
// it and share its outcome. Failed constructions are not remembered.
func (p *Pool) Acquire(ctx context.Context, venueID string, creds types.Credentials) (gateway.Gateway, error) {
	id := gateway.NormalizeID(venueID)
	if p.venues != nil && !p.venues.Supports(id) {
		return nil, types.NewError(types.KindUnsupportedVenue, venueID, "",
			"exchange "+venueID+" is not supported", nil)
	}

	key := Key(id, creds)
	if g, ok := p.lookup(key); ok {
		PoolAcquiresTotal.WithLabelValues("hit").Inc()
		return g, nil
	}

	ch := p.inflight.DoChan(key, func() (any, error) {
		// A previous flight may have finished between lookup and DoChan.
		if g, ok := p.lookup(key); ok {
			return g, nil
		}
		return p.build(ctx, id, key, creds)
	})

	select {
	case <-ctx.Done():
		PoolAcquiresTotal.WithLabelValues("canceled").Inc()
		return nil, types.NewError(types.KindVenueUnavailable, id, "", "gave up waiting for venue handle", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			PoolAcquiresTotal.WithLabelValues("error").Inc()
			return nil, res.Err
		}
		if res.Shared {
			PoolAcquiresTotal.WithLabelValues("shared").Inc()
		} else {
			PoolAcquiresTotal.WithLabelValues("built").Inc()
		}
		return res.Val.(gateway.Gateway), nil
	}
}

// build runs detached from the caller's cancellation so that one impatient
// caller cannot fail a construction other callers are waiting on.
func (p *Pool) build(ctx context.Context, id, key string, creds types.Credentials) (gateway.Gateway, error) {
	buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.buildTimeout)
	defer cancel()

	start := time.Now()
	g, err := p.factory.New(buildCtx, id, creds)
	PoolBuildDuration.WithLabelValues(id).Observe(time.Since(start).Seconds())
	if err != nil {
		PoolBuildsTotal.WithLabelValues(id, "error").Inc()
		p.logger.Warn("pool-handle-build-failed",
			zap.String("venue", id),
			zap.Bool("authenticated", creds.HasKeys()),
			zap.Error(err))

		var domainErr *types.Error
		if errors.As(err, &domainErr) {
			return nil, err
		}
		return nil, gateway.Translate(err, id, "loadMarkets")
	}

	PoolBuildsTotal.WithLabelValues(id, "ok").Inc()
	p.store(key, g)

	p.logger.Info("pool-handle-built",
		zap.String("venue", id),
		zap.Bool("authenticated", creds.HasKeys()),
		zap.Duration("duration", time.Since(start)))

	return g, nil
}

// Size returns the number of public-table handles.
func (p *Pool) Size() int {
	n := 0
	p.public.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close drops every handle. Handles hold no resources beyond memory.
func (p *Pool) Close() {
	p.public.Range(func(k, _ any) bool {
		p.public.Delete(k)
		return true
	})
	PoolHandles.Set(0)
	if p.credentialed != nil {
		p.credentialed.Close()
	}
}

// redact keeps the venue and a short fingerprint prefix for logs.
func redact(key string) string {
	venue, fingerprint, _ := strings.Cut(key, "|")
	if len(fingerprint) > 8 {
		fingerprint = fingerprint[:8]
	}
	return venue + "|" + fingerprint
}
