package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Prometheus metrics for quota tracking.
var (
	searchesLeft = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "serpapi_searches_left",
		Help: "Number of searches left on the tracked account",
	})

	quotaBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "serpapi_quota_blocks_total",
		Help: "Total number of searches blocked because the quota was used up",
	})
)

// Tracker keeps the quota state in redis and gates searches.
type Tracker struct {
	redis  *redis.Client
	logger zerolog.Logger
}

// NewTracker creates a new quota tracker.
func NewTracker(redisClient *redis.Client, logger zerolog.Logger) *Tracker {
	return &Tracker{
		redis:  redisClient,
		logger: logger,
	}
}

// GetState retrieves the current quota state from Redis.
// Returns ok=false and a permissive state if the quota was never seeded.
func (t *Tracker) GetState(ctx context.Context) (state *QuotaState, ok bool, err error) {
	left, err := t.redis.Get(ctx, RedisKeySearchesLeft).Int()
	if err == redis.Nil {
		t.logger.Debug().Msg("No quota state in Redis, assuming healthy")
		return &QuotaState{SearchesLeft: SearchesLeftHealthy, IsHealthy: true}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get searches left: %w", err)
	}

	hourlyLimit, err := t.redis.Get(ctx, RedisKeyHourlyLimit).Int()
	if err != nil && err != redis.Nil {
		return nil, false, fmt.Errorf("get hourly limit: %w", err)
	}

	// The hourly counter expires at the top of the hour.
	thisHour, err := t.redis.Get(ctx, RedisKeyThisHour).Int()
	if err != nil && err != redis.Nil {
		return nil, false, fmt.Errorf("get this hour: %w", err)
	}

	var lastUpdate time.Time
	lastUpdateStr, err := t.redis.Get(ctx, RedisKeyLastUpdate).Result()
	if err != nil && err != redis.Nil {
		return nil, false, fmt.Errorf("get last update: %w", err)
	}
	if lastUpdateStr != "" {
		if err := json.Unmarshal([]byte(lastUpdateStr), &lastUpdate); err != nil {
			return nil, false, fmt.Errorf("parse last update: %w", err)
		}
	}

	state = &QuotaState{
		SearchesLeft: left,
		HourlyLimit:  hourlyLimit,
		ThisHour:     thisHour,
		LastUpdate:   lastUpdate,
	}
	state.UpdateHealth()

	return state, true, nil
}

// UpdateFromAccount seeds the quota state from an account snapshot.
func (t *Tracker) UpdateFromAccount(ctx context.Context, snap Snapshot) error {
	now := time.Now()
	state := &QuotaState{
		SearchesLeft: snap.SearchesLeft,
		HourlyLimit:  snap.HourlyLimit,
		ThisHour:     snap.ThisHour,
		LastUpdate:   now,
	}
	state.UpdateHealth()

	lastUpdateJSON, err := json.Marshal(state.LastUpdate)
	if err != nil {
		return fmt.Errorf("marshal last update: %w", err)
	}

	// Store in Redis atomically
	pipe := t.redis.TxPipeline()
	pipe.Set(ctx, RedisKeySearchesLeft, state.SearchesLeft, 0)
	pipe.Set(ctx, RedisKeyHourlyLimit, state.HourlyLimit, 0)
	pipe.Set(ctx, RedisKeyThisHour, state.ThisHour, untilNextHour(now))
	pipe.Set(ctx, RedisKeyLastUpdate, lastUpdateJSON, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store quota state in redis: %w", err)
	}

	searchesLeft.Set(float64(state.SearchesLeft))

	switch {
	case state.NeedsCriticalBlock():
		t.logger.Error().
			Int("searches_left", state.SearchesLeft).
			Int("hourly_remaining", state.HourlyRemaining()).
			Msg("Search quota exhausted - searches will be blocked")
	case state.NeedsWarning():
		t.logger.Warn().
			Int("searches_left", state.SearchesLeft).
			Msg("Search quota running low")
	default:
		t.logger.Info().
			Int("searches_left", state.SearchesLeft).
			Bool("is_healthy", state.IsHealthy).
			Msg("Search quota state updated")
	}

	return nil
}

// RecordSearch counts one search against the quota. It is a no-op until the
// quota has been seeded by UpdateFromAccount.
func (t *Tracker) RecordSearch(ctx context.Context) error {
	exists, err := t.redis.Exists(ctx, RedisKeySearchesLeft).Result()
	if err != nil {
		return fmt.Errorf("check quota state: %w", err)
	}
	if exists == 0 {
		return nil
	}

	now := time.Now()
	pipe := t.redis.TxPipeline()
	left := pipe.Decr(ctx, RedisKeySearchesLeft)
	pipe.Incr(ctx, RedisKeyThisHour)
	pipe.ExpireAt(ctx, RedisKeyThisHour, now.Truncate(time.Hour).Add(time.Hour))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record search in redis: %w", err)
	}

	searchesLeft.Set(float64(left.Val()))
	return nil
}

// ShouldAllowRequest reports whether a search may be made.
// Returns false once no searches are left in the account or the hour.
func (t *Tracker) ShouldAllowRequest(ctx context.Context) (bool, error) {
	state, _, err := t.GetState(ctx)
	if err != nil {
		return false, fmt.Errorf("get quota state: %w", err)
	}

	if state.NeedsCriticalBlock() {
		t.logger.Error().
			Int("searches_left", state.SearchesLeft).
			Int("hourly_remaining", state.HourlyRemaining()).
			Msg("Search quota exhausted - blocking request")

		quotaBlocksTotal.Inc()
		return false, nil
	}

	if state.NeedsWarning() {
		t.logger.Warn().
			Int("searches_left", state.SearchesLeft).
			Msg("Search quota low")
	}

	return true, nil
}
