package commands

import (
	"fmt"

	"github.com/wonny/bestk/backend/internal/analysis"
	"github.com/wonny/bestk/backend/internal/collector"
	"github.com/wonny/bestk/backend/internal/external/krx"
	"github.com/wonny/bestk/backend/internal/external/naver"
	"github.com/wonny/bestk/backend/pkg/config"
	"github.com/wonny/bestk/backend/pkg/database"
	"github.com/wonny/bestk/backend/pkg/httputil"
	"github.com/wonny/bestk/backend/pkg/logger"
	"github.com/wonny/bestk/backend/pkg/redis"
)

// appDeps holds the wired application graph shared by the commands
type appDeps struct {
	cfg          *config.Config
	log          *logger.Logger
	db           *database.DB
	redisClient  *redis.Client
	repo         *analysis.Repository
	tracker      *analysis.ProgressTracker
	orchestrator *analysis.Orchestrator
	collector    *collector.Collector
}

// buildDeps loads config and wires the full dependency graph
func buildDeps() (*appDeps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// Redis는 선택 사항: 연결 실패 시 캐시/레이트리밋 없이 동작한다
	redisClient, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, running without cache")
		cfg.Redis.Enabled = false
		redisClient, _ = redis.New(cfg)
	}

	httpClient := httputil.New(cfg, log)

	naverClient := naver.NewClient(httpClient, cfg.Naver, log)

	limiter := redis.NewRateLimiter(redisClient, "bestk")
	krxClient := krx.NewClient(httpClient, cfg.KRX, limiter, log)

	repo := analysis.NewRepository(db.Pool)

	cache := redis.NewCache(redisClient, "bestk")
	cachedPrices := analysis.NewCachedPriceProvider(naverClient, cache, log)

	tracker := analysis.NewProgressTracker()

	// 가격 조회는 Naver(캐시 경유)가 1차, DB 이력이 2차
	orchestrator := analysis.NewOrchestrator(repo, cachedPrices, repo, tracker, cfg.Analysis, log)

	col := collector.NewCollector(naverClient, krxClient, naverClient, repo, cfg.Analysis, log)

	return &appDeps{
		cfg:          cfg,
		log:          log,
		db:           db,
		redisClient:  redisClient,
		repo:         repo,
		tracker:      tracker,
		orchestrator: orchestrator,
		collector:    col,
	}, nil
}

// Close releases the connections held by the graph
func (d *appDeps) Close() {
	if d.redisClient != nil {
		_ = d.redisClient.Close()
	}
	if d.db != nil {
		d.db.Close()
	}
}
