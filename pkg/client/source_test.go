package client

import (
	"regexp"
	"testing"
)

func TestSourceTag(t *testing.T) {
	tests := []struct {
		goVersion string
		want      string
	}{
		{"go1.24.7", "go@1.24.7,serpapi-go@" + Version},
		{"go1.25rc1", "go@1.25rc1,serpapi-go@" + Version},
		{"devel +abc123 Tue Jan 1", "go,serpapi-go@" + Version},
		{"", "go,serpapi-go@" + Version},
	}

	for _, tt := range tests {
		if got := sourceTag(tt.goVersion); got != tt.want {
			t.Errorf("sourceTag(%q) = %q, want %q", tt.goVersion, got, tt.want)
		}
	}
}

func TestSourceTag_Runtime(t *testing.T) {
	pattern := regexp.MustCompile(`^go(@[^,]+)?,serpapi-go@\d+\.\d+\.\d+$`)
	if tag := SourceTag(); !pattern.MatchString(tag) {
		t.Errorf("SourceTag() = %q, does not match %s", tag, pattern)
	}
}
