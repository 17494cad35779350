// Package client provides the HTTP client for the hosted search API:
// credential and timeout validation, URL construction, bounded-time request
// execution, and the account, locations and search calls built on them.
package client

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Sternrassler/serpapi-go/pkg/cache"
	"github.com/Sternrassler/serpapi-go/pkg/ratelimit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for client operations.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "serpapi_requests_total",
		Help: "Total API requests by path and status",
	}, []string{"path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "serpapi_request_duration_seconds",
		Help:    "API request duration in seconds by path",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}, []string{"path"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "serpapi_errors_total",
		Help: "Total client errors by class",
	}, []string{"class"})
)

// Doer executes HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the search API client. It is safe for concurrent use.
type Client struct {
	httpClient Doer
	baseURL    string
	source     string
	cache      *cache.Manager
	quota      *ratelimit.Tracker
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
// APIKey and Timeout are defaults that individual calls may override.
type Config struct {
	// Default API key
	APIKey string

	// Default request timeout
	Timeout time.Duration

	// Origin all paths are resolved against (no trailing slash needed)
	BaseURL string

	// User-Agent header
	UserAgent string

	// HTTP transport; nil uses a plain *http.Client
	HTTPClient Doer

	// Redis enables the response cache and quota tracking (optional)
	Redis *redis.Client

	// Caching; 0 disables the cache even when Redis is set
	CacheTTL time.Duration

	// QuotaGuard blocks searches once the tracked quota is used up (requires Redis)
	QuotaGuard bool

	// MaxPages bounds pagination following; 0 means unbounded
	MaxPages int

	// Logger overrides the global zerolog logger
	Logger *zerolog.Logger
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(apiKey string) Config {
	return Config{
		APIKey:     apiKey,
		Timeout:    60 * time.Second,
		BaseURL:    DefaultBaseURL,
		UserAgent:  ClientName + "/" + Version,
		HTTPClient: &http.Client{},
		CacheTTL:   1 * time.Hour,
		MaxPages:   100,
	}
}

// New creates a new client. The API key and timeout are not validated here;
// they are resolved per call so that a client without a default key can still
// serve calls that carry their own.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("base url must be an absolute url (got %q)", cfg.BaseURL)
	}

	if cfg.CacheTTL < 0 {
		return nil, fmt.Errorf("cache_ttl must be >= 0 (got %s)", cfg.CacheTTL)
	}

	if cfg.MaxPages < 0 {
		return nil, fmt.Errorf("max_pages must be >= 0 (got %d)", cfg.MaxPages)
	}

	if cfg.QuotaGuard && cfg.Redis == nil {
		return nil, fmt.Errorf("quota guard requires a redis client")
	}

	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = ClientName + "/" + Version
	}

	// Initialize logger
	logger := log.With().Str("component", "serpapi-client").Logger()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("component", "serpapi-client").Logger()
	}

	c := &Client{
		httpClient: cfg.HTTPClient,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		source:     SourceTag(),
		config:     cfg,
		logger:     logger,
	}

	if cfg.Redis != nil {
		if cfg.CacheTTL > 0 {
			c.cache = cache.NewManager(cfg.Redis, logger)
		}
		c.quota = ratelimit.NewTracker(cfg.Redis, logger)
	}

	return c, nil
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// Close releases resources held by the client. The redis client is owned by
// the caller and stays open.
func (c *Client) Close() error {
	if t, ok := c.httpClient.(*http.Client); ok {
		t.CloseIdleConnections()
	}
	return nil
}
