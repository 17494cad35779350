package cache

import (
	"net/http"
	"testing"
	"time"
)

func TestEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name     string
		expires  time.Time
		expected bool
	}{
		{"future", time.Now().Add(time.Hour), false},
		{"past", time.Now().Add(-time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &Entry{Expires: tt.expires}
			if got := e.IsExpired(); got != tt.expected {
				t.Errorf("IsExpired() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestEntry_TTL(t *testing.T) {
	expired := &Entry{Expires: time.Now().Add(-time.Minute)}
	if expired.TTL() != 0 {
		t.Errorf("TTL() = %v, want 0 for expired entry", expired.TTL())
	}

	fresh := &Entry{Expires: time.Now().Add(time.Minute)}
	if ttl := fresh.TTL(); ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL() = %v, want (0, 1m]", ttl)
	}
}

func TestNewEntry(t *testing.T) {
	header := http.Header{"Content-Type": []string{"application/json; charset=utf-8"}}
	entry := NewEntry(http.StatusOK, header, []byte(`{"ok":true}`), time.Hour)

	if entry.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", entry.StatusCode)
	}
	if entry.ContentType != "application/json; charset=utf-8" {
		t.Errorf("ContentType = %q", entry.ContentType)
	}
	if got := entry.Expires.Sub(entry.CachedAt); got != time.Hour {
		t.Errorf("Expires - CachedAt = %v, want 1h", got)
	}
	if entry.Age() < 0 {
		t.Errorf("Age() = %v, want >= 0", entry.Age())
	}
}
