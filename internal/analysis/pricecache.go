package analysis

import (
	"context"
	"time"

	"github.com/wonny/bestk/backend/internal/breakout"
	"github.com/wonny/bestk/backend/pkg/logger"
	"github.com/wonny/bestk/backend/pkg/redis"
)

// CachedPriceProvider wraps a PriceProvider with a Redis-backed cache.
// Redis가 비활성화되어 있으면 모든 호출이 원본 provider로 바로 간다.
type CachedPriceProvider struct {
	inner  PriceProvider
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCachedPriceProvider creates a caching decorator over the given provider
func NewCachedPriceProvider(inner PriceProvider, cache *redis.Cache, log *logger.Logger) *CachedPriceProvider {
	return &CachedPriceProvider{
		inner:  inner,
		cache:  cache,
		logger: log,
	}
}

// FetchPrices returns cached bars when available, otherwise fetches from the
// wrapped provider and caches the result
func (p *CachedPriceProvider) FetchPrices(ctx context.Context, ticker string, from, to time.Time) ([]breakout.PriceBar, error) {
	key := redis.PriceHistoryKey(ticker, from.Format("2006-01-02"), to.Format("2006-01-02"))

	var cached []breakout.PriceBar
	hit, err := p.cache.Get(ctx, key, &cached)
	if err != nil {
		p.logger.WithError(err).WithField("ticker", ticker).Warn("price cache read failed")
	}
	if hit {
		return cached, nil
	}

	bars, err := p.inner.FetchPrices(ctx, ticker, from, to)
	if err != nil {
		return nil, err
	}

	if len(bars) > 0 {
		if err := p.cache.Set(ctx, key, bars, redis.TTLMedium); err != nil {
			p.logger.WithError(err).WithField("ticker", ticker).Warn("price cache write failed")
		}
	}
	return bars, nil
}

var _ PriceProvider = (*CachedPriceProvider)(nil)
