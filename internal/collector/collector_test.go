package collector

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/bestk/backend/internal/analysis"
	"github.com/wonny/bestk/backend/internal/breakout"
	"github.com/wonny/bestk/backend/internal/external/krx"
	"github.com/wonny/bestk/backend/internal/external/naver"
	"github.com/wonny/bestk/backend/pkg/config"
	"github.com/wonny/bestk/backend/pkg/logger"
)

type fakeStore struct {
	mu       sync.Mutex
	universe []analysis.Security
	prices   map[string][]breakout.PriceBar
	caps     []analysis.MarketCapRow
	saveErr  map[string]error
}

func (s *fakeStore) TopByMarketCap(_ context.Context, limit int) ([]analysis.Security, error) {
	if limit < len(s.universe) {
		return s.universe[:limit], nil
	}
	return s.universe, nil
}

func (s *fakeStore) SavePrices(_ context.Context, sec analysis.Security, bars []breakout.PriceBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.saveErr[sec.Ticker]; err != nil {
		return err
	}
	if s.prices == nil {
		s.prices = make(map[string][]breakout.PriceBar)
	}
	s.prices[sec.Ticker] = bars
	return nil
}

func (s *fakeStore) SaveMarketCaps(_ context.Context, caps []analysis.MarketCapRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.caps = append(s.caps, caps...)
	return nil
}

type fakePrices struct {
	histories map[string][]breakout.PriceBar
	errs      map[string]error
}

func (p *fakePrices) FetchPrices(_ context.Context, ticker string, _, _ time.Time) ([]breakout.PriceBar, error) {
	if err := p.errs[ticker]; err != nil {
		return nil, err
	}
	return p.histories[ticker], nil
}

type fakeCapSource struct {
	items []krx.MarketCapItem
	err   error
}

func (s *fakeCapSource) FetchAllMarketCaps(_ context.Context) ([]krx.MarketCapItem, error) {
	return s.items, s.err
}

type fakeCapFallback struct {
	pages map[string]map[int][]naver.MarketCapEntry
}

func (f *fakeCapFallback) FetchMarketCapPage(_ context.Context, market string, page int) ([]naver.MarketCapEntry, error) {
	return f.pages[market][page], nil
}

func someBars() []breakout.PriceBar {
	return []breakout.PriceBar{
		{Date: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), Open: 100, High: 110, Low: 95, Close: 105, Volume: 1000},
	}
}

func newTestCollector(store *fakeStore, prices analysis.PriceProvider, capSource CapSource, capFallback CapFallback) *Collector {
	cfg := config.AnalysisConfig{UniverseSize: 50, Workers: 2}
	return NewCollector(prices, capSource, capFallback, store, cfg, logger.NewWriter(io.Discard))
}

func TestCollectPrices(t *testing.T) {
	store := &fakeStore{
		universe: []analysis.Security{
			{Ticker: "005930", Name: "삼성전자", Market: "KOSPI"},
			{Ticker: "000660", Name: "SK하이닉스", Market: "KOSPI"},
		},
	}
	prices := &fakePrices{
		histories: map[string][]breakout.PriceBar{
			"005930": someBars(),
		},
		errs: map[string]error{
			"000660": fmt.Errorf("timeout"),
		},
	}

	c := newTestCollector(store, prices, &fakeCapSource{}, nil)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	results, err := c.CollectPrices(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byTicker := map[string]FetchResult{}
	for _, r := range results {
		byTicker[r.Ticker] = r
	}

	assert.NoError(t, byTicker["005930"].Error)
	assert.Equal(t, 1, byTicker["005930"].PriceCount)
	assert.Error(t, byTicker["000660"].Error)

	assert.Len(t, store.prices["005930"], 1)
	assert.NotContains(t, store.prices, "000660")
}

func TestCollectPrices_EmptyUniverseFails(t *testing.T) {
	c := newTestCollector(&fakeStore{}, &fakePrices{}, &fakeCapSource{}, nil)

	_, err := c.CollectPrices(context.Background(), time.Now().AddDate(0, 0, -7), time.Now())
	assert.Error(t, err)
}

func TestCollectMarketCaps_Primary(t *testing.T) {
	tradeDate := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{}
	source := &fakeCapSource{
		items: []krx.MarketCapItem{
			{Ticker: "005930", Name: "삼성전자", Market: "KOSPI", MarketCap: 429_000_000_000_000, ClosePrice: 72000, TradeDate: tradeDate},
			{Ticker: "247540", Name: "에코프로비엠", Market: "KOSDAQ", MarketCap: 25_000_000_000_000, ClosePrice: 255000, TradeDate: tradeDate},
		},
	}

	c := newTestCollector(store, &fakePrices{}, source, nil)

	count, err := c.CollectMarketCaps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.Len(t, store.caps, 2)
	assert.Equal(t, "005930", store.caps[0].Ticker)
	assert.Equal(t, tradeDate, store.caps[0].Date)
	assert.Equal(t, int64(429_000_000_000_000), store.caps[0].MarketCap)
}

func TestCollectMarketCaps_FallbackOnPrimaryFailure(t *testing.T) {
	store := &fakeStore{}
	source := &fakeCapSource{err: fmt.Errorf("blocked")}
	fallback := &fakeCapFallback{
		pages: map[string]map[int][]naver.MarketCapEntry{
			"KOSPI": {1: {
				{Ticker: "005930", Name: "삼성전자", Market: "KOSPI", ClosePrice: 72000, MarketCap: 429_000_000_000_000},
			}},
			"KOSDAQ": {1: {
				{Ticker: "247540", Name: "에코프로비엠", Market: "KOSDAQ", ClosePrice: 255000, MarketCap: 25_000_000_000_000},
			}},
		},
	}

	c := newTestCollector(store, &fakePrices{}, source, fallback)

	count, err := c.CollectMarketCaps(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, store.caps, 2)
}

func TestCollectMarketCaps_NoFallbackConfigured(t *testing.T) {
	c := newTestCollector(&fakeStore{}, &fakePrices{}, &fakeCapSource{err: fmt.Errorf("blocked")}, nil)

	_, err := c.CollectMarketCaps(context.Background())
	assert.Error(t, err)
}
