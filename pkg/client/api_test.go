package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Sternrassler/serpapi-go/internal/testutil"
	"github.com/Sternrassler/serpapi-go/pkg/pagination"
	"github.com/Sternrassler/serpapi-go/pkg/params"
)

func TestGetAccount(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()

	c := newTestClient(t, mock)

	info, err := c.GetAccount(context.Background())
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}

	if info.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want test-key", info.APIKey)
	}
	if info.TotalSearchesLeft != 4990 || info.AccountRateLimitPerHour != 1000 {
		t.Errorf("unexpected account info: %+v", info)
	}

	q := mock.GetLastQuery()
	if q.Get("api_key") != "test-key" {
		t.Errorf("api_key = %q, want test-key", q.Get("api_key"))
	}
	if q.Get("source") != SourceTag() {
		t.Errorf("source = %q, want %q", q.Get("source"), SourceTag())
	}
}

func TestGetAccount_KeyResolution(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		opts       []CallOption
		wantKey    string
		wantErr    error
	}{
		{name: "configured key", configured: "default-key", wantKey: "default-key"},
		{name: "call key wins", configured: "default-key", opts: []CallOption{WithAPIKey("call-key")}, wantKey: "call-key"},
		{name: "no key", wantErr: ErrMissingCredential},
		{name: "empty call key", configured: "default-key", opts: []CallOption{WithAPIKey("")}, wantErr: ErrMissingCredential},
		{name: "invalid call timeout", configured: "default-key", opts: []CallOption{WithTimeout(0)}, wantErr: ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockSerpAPI()
			defer mock.Close()

			c := newTestClient(t, mock, func(cfg *Config) { cfg.APIKey = tt.configured })

			_, err := c.GetAccount(context.Background(), tt.opts...)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if mock.GetRequestCount() != 0 {
					t.Error("no request should be sent after a validation failure")
				}
				return
			}
			if err != nil {
				t.Fatalf("GetAccount failed: %v", err)
			}
			if got := mock.GetLastQuery().Get("api_key"); got != tt.wantKey {
				t.Errorf("api_key = %q, want %q", got, tt.wantKey)
			}
		})
	}
}

func TestGetLocations_NoKeyRequired(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()

	c := newTestClient(t, mock, func(cfg *Config) { cfg.APIKey = "" })

	locations, err := c.GetLocations(context.Background(), LocationsParams{Q: "austin", Limit: 1})
	if err != nil {
		t.Fatalf("GetLocations failed: %v", err)
	}

	if len(locations) != 1 {
		t.Fatalf("got %d locations, want 1", len(locations))
	}
	if locations[0].Name != "Austin, TX" || locations[0].GoogleID != 200635 {
		t.Errorf("unexpected location: %+v", locations[0])
	}
	if locations[0].GPS[1] != 30.267153 {
		t.Errorf("GPS = %v", locations[0].GPS)
	}

	q := mock.GetLastQuery()
	if q.Get("q") != "austin" || q.Get("limit") != "1" {
		t.Errorf("query = %v", q)
	}
	if q.Has("api_key") {
		t.Error("locations should not send an api key")
	}
}

func TestGetLocations_OmitsZeroFilters(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()

	c := newTestClient(t, mock)

	locations, err := c.GetLocations(context.Background(), LocationsParams{})
	if err != nil {
		t.Fatalf("GetLocations failed: %v", err)
	}
	if len(locations) != 2 {
		t.Errorf("got %d locations, want 2", len(locations))
	}

	q := mock.GetLastQuery()
	if q.Has("q") || q.Has("limit") {
		t.Errorf("zero filters should be omitted: %v", q)
	}
}

func TestSearch(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()

	c := newTestClient(t, mock)

	result, err := c.Search(context.Background(), "google", params.New(
		params.P("q", "coffee"),
		params.P("engine", "bing"),
		params.P("location", params.Absent()),
	))
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	organic, ok := result["organic_results"].([]any)
	if !ok || len(organic) != testutil.PageSize {
		t.Fatalf("organic_results = %v", result["organic_results"])
	}

	q := mock.GetLastQuery()
	if q.Get("engine") != "google" {
		t.Errorf("engine = %q, want google", q.Get("engine"))
	}
	if q.Get("api_key") != "test-key" {
		t.Errorf("api_key = %q, want test-key", q.Get("api_key"))
	}
	if q.Has("location") {
		t.Error("absent location should not be sent")
	}
}

func TestSearch_KeyFromParams(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()

	c := newTestClient(t, mock)
	p := params.New(params.P("q", "coffee"), params.P("api_key", "bag-key"))

	if _, err := c.SearchRaw(context.Background(), "google", p); err != nil {
		t.Fatalf("SearchRaw failed: %v", err)
	}
	if got := mock.GetLastQuery().Get("api_key"); got != "bag-key" {
		t.Errorf("api_key = %q, want bag-key", got)
	}

	if _, err := c.SearchRaw(context.Background(), "google", p, WithAPIKey("option-key")); err != nil {
		t.Fatalf("SearchRaw failed: %v", err)
	}
	if got := mock.GetLastQuery().Get("api_key"); got != "option-key" {
		t.Errorf("api_key = %q, want option-key", got)
	}

	_, err := c.SearchRaw(context.Background(), "google", params.New(params.P("api_key", "")))
	if !errors.Is(err, ErrMissingCredential) {
		t.Errorf("empty api_key entry: error = %v, want ErrMissingCredential", err)
	}
}

func TestSearch_APIError(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()
	mock.SetResponse("/search", testutil.NewErrorResponse(http.StatusUnauthorized, "Invalid API key."))

	c := newTestClient(t, mock)

	_, err := c.Search(context.Background(), "google", params.New(params.P("q", "coffee")))

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Message != "Invalid API key." {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestSearchPages(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()
	mock.SetSearchPages(3)

	c := newTestClient(t, mock)

	var starts []string
	for page, err := range c.SearchPages(context.Background(), "google", params.New(params.P("q", "coffee"))) {
		if err != nil {
			t.Fatalf("page %d: %v", page.Number, err)
		}
		starts = append(starts, page.Params.Lookup("start").String())
	}

	want := []string{"undefined", "10", "20"}
	if fmt.Sprint(starts) != fmt.Sprint(want) {
		t.Errorf("start per page = %v, want %v", starts, want)
	}
	if got := mock.GetPathCount("/search"); got != 3 {
		t.Errorf("search requests = %d, want 3", got)
	}
}

func TestSearchPages_MaxPages(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()
	mock.SetSearchPages(10)

	c := newTestClient(t, mock, func(cfg *Config) { cfg.MaxPages = 2 })

	count := 0
	for _, err := range c.SearchPages(context.Background(), "google", params.New(params.P("q", "coffee"))) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		count++
	}

	if count != 2 {
		t.Errorf("pages = %d, want 2", count)
	}
}

func TestSearchPages_StopsOnError(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()

	c := newTestClient(t, mock, func(cfg *Config) { cfg.APIKey = "" })

	var errs []error
	for _, err := range c.SearchPages(context.Background(), "google", params.New(params.P("q", "coffee"))) {
		errs = append(errs, err)
	}

	if len(errs) != 1 || !errors.Is(errs[0], ErrMissingCredential) {
		t.Errorf("errors = %v, want one ErrMissingCredential", errs)
	}
}

func TestBatchFetcher(t *testing.T) {
	mock := testutil.NewMockSerpAPI()
	defer mock.Close()
	mock.SetSearchPages(2)

	c := newTestClient(t, mock)
	bf := c.NewBatchFetcher("google", pagination.Config{MaxConcurrency: 2})

	results, err := bf.FetchAll(context.Background(), []params.Bag{
		params.New(params.P("q", "coffee")),
		params.New(params.P("q", "tea")),
		params.New(params.P("q", "cocoa")),
	})
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}

	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if len(r.Pages) != 2 {
			t.Errorf("result %d: pages = %d, want 2", i, len(r.Pages))
		}
	}
	if got := mock.GetPathCount("/search"); got != 6 {
		t.Errorf("search requests = %d, want 6", got)
	}
}
