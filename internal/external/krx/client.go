package krx

import (
	"github.com/wonny/bestk/backend/pkg/config"
	"github.com/wonny/bestk/backend/pkg/httputil"
	"github.com/wonny/bestk/backend/pkg/logger"
	"github.com/wonny/bestk/backend/pkg/redis"
)

// Client handles communication with the KRX data portal
// ⭐ SSOT: KRX 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string

	// limiter may be nil (Redis 비활성화 환경)
	limiter *redis.RateLimiter
}

// NewClient creates a new KRX client. limiter may be nil.
func NewClient(httpClient *httputil.Client, cfg config.KRXConfig, limiter *redis.RateLimiter, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.BaseURL,
		limiter:    limiter,
	}
}
