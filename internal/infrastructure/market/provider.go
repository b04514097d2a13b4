package market

import (
	"context"
	"time"

	"github.com/patentminer/patentminer/internal/domain/finance"
	"github.com/patentminer/patentminer/internal/infrastructure/monitoring/logging"
)

// snapshotCache is the subset of the redis cache this provider needs.
type snapshotCache interface {
	GetMacroSnapshot(ctx context.Context, dest any) (bool, error)
	SetMacroSnapshot(ctx context.Context, snapshot any, ttl time.Duration) error
}

// signalFetcher is implemented by FredClient.
type signalFetcher interface {
	FetchMacroSignals(ctx context.Context) (finance.MacroSignals, error)
}

// Provider serves macro signals with a snapshot cache in front of FRED and
// the fixed defaults behind both.  It never returns an error: financial
// modeling always has signals to work with.
type Provider struct {
	fetcher signalFetcher
	cache   snapshotCache
	ttl     time.Duration
	logger  logging.Logger
}

// NewProvider wires the fetcher and cache.  cache may be nil, in which case
// every call goes to the fetcher.
func NewProvider(fetcher signalFetcher, cache snapshotCache, ttl time.Duration, log logging.Logger) *Provider {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Provider{fetcher: fetcher, cache: cache, ttl: ttl, logger: log.Named("market")}
}

// GetMacroSignals returns cached signals when fresh, fetched signals when
// the cache misses, and the fallback defaults when the fetch fails.
func (p *Provider) GetMacroSignals(ctx context.Context) finance.MacroSignals {
	if p.cache != nil {
		var cached finance.MacroSignals
		ok, err := p.cache.GetMacroSnapshot(ctx, &cached)
		if err != nil {
			p.logger.Warn("macro snapshot cache read failed", logging.Err(err))
		} else if ok {
			return cached
		}
	}

	signals, err := p.fetcher.FetchMacroSignals(ctx)
	if err != nil {
		p.logger.Warn("macro signal fetch failed, using defaults", logging.Err(err))
		return finance.DefaultMacroSignals()
	}

	if p.cache != nil {
		if err := p.cache.SetMacroSnapshot(ctx, signals, p.ttl); err != nil {
			p.logger.Warn("macro snapshot cache write failed", logging.Err(err))
		}
	}
	return signals
}
