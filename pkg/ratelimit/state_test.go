package ratelimit

import (
	"testing"
	"time"
)

func TestQuotaState_IsStale(t *testing.T) {
	tests := []struct {
		name     string
		state    *QuotaState
		maxAge   time.Duration
		expected bool
	}{
		{
			name:     "fresh state",
			state:    &QuotaState{LastUpdate: time.Now()},
			maxAge:   5 * time.Minute,
			expected: false,
		},
		{
			name:     "stale state",
			state:    &QuotaState{LastUpdate: time.Now().Add(-10 * time.Minute)},
			maxAge:   5 * time.Minute,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsStale(tt.maxAge); got != tt.expected {
				t.Errorf("IsStale() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestQuotaState_Decisions(t *testing.T) {
	tests := []struct {
		name            string
		state           QuotaState
		hourlyRemaining int
		critical        bool
		warning         bool
		healthy         bool
	}{
		{
			name:            "healthy unlimited hour",
			state:           QuotaState{SearchesLeft: 5000},
			hourlyRemaining: -1,
			healthy:         true,
		},
		{
			name:            "low but allowed",
			state:           QuotaState{SearchesLeft: 50, HourlyLimit: 100, ThisHour: 10},
			hourlyRemaining: 90,
			warning:         true,
		},
		{
			name:            "account exhausted",
			state:           QuotaState{SearchesLeft: 0},
			hourlyRemaining: -1,
			critical:        true,
		},
		{
			name:            "hour exhausted",
			state:           QuotaState{SearchesLeft: 5000, HourlyLimit: 100, ThisHour: 100},
			hourlyRemaining: 0,
			critical:        true,
			healthy:         true,
		},
		{
			name:            "hour overdrawn",
			state:           QuotaState{SearchesLeft: 5000, HourlyLimit: 100, ThisHour: 120},
			hourlyRemaining: 0,
			critical:        true,
			healthy:         true,
		},
		{
			name:            "at healthy threshold",
			state:           QuotaState{SearchesLeft: SearchesLeftHealthy},
			hourlyRemaining: -1,
			healthy:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.state
			s.UpdateHealth()

			if got := s.HourlyRemaining(); got != tt.hourlyRemaining {
				t.Errorf("HourlyRemaining() = %d, want %d", got, tt.hourlyRemaining)
			}
			if got := s.NeedsCriticalBlock(); got != tt.critical {
				t.Errorf("NeedsCriticalBlock() = %v, want %v", got, tt.critical)
			}
			if got := s.NeedsWarning(); got != tt.warning {
				t.Errorf("NeedsWarning() = %v, want %v", got, tt.warning)
			}
			if s.IsHealthy != tt.healthy {
				t.Errorf("IsHealthy = %v, want %v", s.IsHealthy, tt.healthy)
			}
		})
	}
}

func TestUntilNextHour(t *testing.T) {
	base := time.Date(2026, 10, 18, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		now      time.Time
		expected time.Duration
	}{
		{base, time.Hour},
		{base.Add(15 * time.Minute), 45 * time.Minute},
		{base.Add(59*time.Minute + 59*time.Second), time.Second},
	}

	for _, tt := range tests {
		if got := untilNextHour(tt.now); got != tt.expected {
			t.Errorf("untilNextHour(%s) = %v, want %v", tt.now.Format(time.Kitchen), got, tt.expected)
		}
	}
}
