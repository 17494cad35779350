package client

import (
	"testing"

	"github.com/Sternrassler/serpapi-go/pkg/params"
)

func TestBuildURL(t *testing.T) {
	const base = "https://serpapi.com"

	tests := []struct {
		name   string
		path   string
		params params.Bag
		want   string
	}{
		{
			name: "empty path and params",
			want: base + "?",
		},
		{
			name: "root path",
			path: "/",
			want: base + "/?",
		},
		{
			name:   "params keep their order",
			path:   "/search",
			params: params.New(params.P("q", "coffee"), params.P("gl", "us")),
			want:   base + "/search?q=coffee&gl=us",
		},
		{
			name: "absent dropped, null kept",
			path: "/search",
			params: params.New(
				params.P("q", "coffee"),
				params.P("gl", params.Absent()),
				params.P("hl", nil),
			),
			want: base + "/search?q=coffee&hl=null",
		},
		{
			name:   "values are escaped",
			path:   "/search",
			params: params.New(params.P("q", "coffee & tea"), params.P("num", 10)),
			want:   base + "/search?q=coffee+%26+tea&num=10",
		},
		{
			name:   "tilde and asterisk",
			path:   "/search",
			params: params.New(params.P("q", "a~b*c")),
			want:   base + "/search?q=a%7Eb*c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildURL(base, tt.path, tt.params); got != tt.want {
				t.Errorf("BuildURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_BuildURL_TrimsTrailingSlash(t *testing.T) {
	cfg := DefaultConfig("key")
	cfg.BaseURL = "http://localhost:8080/"

	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got := c.BuildURL(AccountPath, params.New(params.P("api_key", "x")))
	if want := "http://localhost:8080/account?api_key=x"; got != want {
		t.Errorf("BuildURL() = %q, want %q", got, want)
	}
}
