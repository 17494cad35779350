// Package ratelimit tracks the search quota of an API account and gates
// searches once it is used up. The state is seeded from the account endpoint,
// counted down locally as searches are made, and shared across processes
// through redis.
package ratelimit

import (
	"time"
)

// Redis keys for quota state storage.
const (
	RedisKeySearchesLeft = "serpapi:quota:searches_left"
	RedisKeyHourlyLimit  = "serpapi:quota:hourly_limit"
	RedisKeyThisHour     = "serpapi:quota:this_hour"
	RedisKeyLastUpdate   = "serpapi:quota:last_update"
)

// Thresholds for quota decisions.
const (
	// SearchesLeftWarning logs warnings when fewer searches remain.
	SearchesLeftWarning = 100

	// SearchesLeftHealthy indicates normal operation.
	SearchesLeftHealthy = 1000
)

// Snapshot is the quota reported by the account endpoint.
type Snapshot struct {
	// SearchesLeft is total_searches_left (plan plus extra credits)
	SearchesLeft int
	// HourlyLimit is account_rate_limit_per_hour; 0 means unlimited
	HourlyLimit int
	// ThisHour is this_hour_searches
	ThisHour int
}

// QuotaState represents the tracked quota of an account.
type QuotaState struct {
	// SearchesLeft is the number of searches remaining on the account.
	SearchesLeft int `json:"searches_left"`

	// HourlyLimit is the maximum number of searches per hour (0 = unlimited).
	HourlyLimit int `json:"hourly_limit"`

	// ThisHour is the number of searches made in the current hour.
	ThisHour int `json:"this_hour"`

	// LastUpdate is when the state was last seeded from the account endpoint.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when SearchesLeft >= SearchesLeftHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state is older than maxAge.
func (s *QuotaState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// HourlyRemaining returns the searches left in the current hour, or -1 when
// the account has no hourly limit.
func (s *QuotaState) HourlyRemaining() int {
	if s.HourlyLimit <= 0 {
		return -1
	}
	remaining := s.HourlyLimit - s.ThisHour
	if remaining < 0 {
		return 0
	}
	return remaining
}

// NeedsCriticalBlock returns true if searches should be blocked.
func (s *QuotaState) NeedsCriticalBlock() bool {
	return s.SearchesLeft <= 0 || s.HourlyRemaining() == 0
}

// NeedsWarning returns true if the quota is running low.
func (s *QuotaState) NeedsWarning() bool {
	return s.SearchesLeft < SearchesLeftWarning && !s.NeedsCriticalBlock()
}

// UpdateHealth updates the IsHealthy field based on SearchesLeft.
func (s *QuotaState) UpdateHealth() {
	s.IsHealthy = s.SearchesLeft >= SearchesLeftHealthy
}

// untilNextHour returns the time left in the hour containing now.
func untilNextHour(now time.Time) time.Duration {
	return now.Truncate(time.Hour).Add(time.Hour).Sub(now)
}
