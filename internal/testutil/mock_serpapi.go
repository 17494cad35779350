// Package testutil provides testing utilities for the search API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// PageSize is the number of organic results per page served by the default
// search handler.
const PageSize = 10

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSerpAPI is a configurable mock search API server for testing.
type MockSerpAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// SearchPages is the number of pages the default search handler serves.
	SearchPages int

	// Tracking
	RequestCount int
	LastQuery    url.Values
	LastHeader   http.Header
	paths        map[string]int
}

// NewMockSerpAPI creates a new mock server serving one page per search.
func NewMockSerpAPI() *MockSerpAPI {
	mock := &MockSerpAPI{
		handlers:    make(map[string]func(w http.ResponseWriter, r *http.Request)),
		paths:       make(map[string]int),
		SearchPages: 1,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.paths[r.URL.Path]++
		mock.LastQuery = r.URL.Query()
		mock.LastHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case "/account":
			mock.accountHandler(w, r)
		case "/locations.json":
			mock.locationsHandler(w, r)
		case "/search", "/search.json":
			mock.searchHandler(w, r)
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "Unknown endpoint"})
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSerpAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSerpAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockSerpAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastQuery = nil
	m.LastHeader = nil
	m.paths = make(map[string]int)
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSerpAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for a path. A delay is cut short
// when the client goes away.
func (m *MockSerpAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetSearchPages sets the number of pages served by the default search handler.
func (m *MockSerpAPI) SetSearchPages(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchPages = n
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockSerpAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns the number of requests made to path.
func (m *MockSerpAPI) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths[path]
}

// GetLastQuery returns the query of the most recent request.
func (m *MockSerpAPI) GetLastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastQuery
}

// GetLastHeader returns the headers of the most recent request.
func (m *MockSerpAPI) GetLastHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastHeader
}

func (m *MockSerpAPI) accountHandler(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("api_key")
	if key == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid API key."})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account_id":                  "acc_123",
		"api_key":                     key,
		"account_email":               "dev@example.com",
		"plan_id":                     "developer",
		"plan_name":                   "Developer",
		"searches_per_month":          5000,
		"plan_searches_left":          4990,
		"extra_credits":               0,
		"total_searches_left":         4990,
		"this_month_usage":            10,
		"this_hour_searches":          2,
		"last_hour_searches":          8,
		"account_rate_limit_per_hour": 1000,
	})
}

func (m *MockSerpAPI) locationsHandler(w http.ResponseWriter, r *http.Request) {
	locations := []map[string]any{
		{
			"id":               "585069bdee19ad271e9bc072",
			"google_id":        200635,
			"google_parent_id": 21176,
			"name":             "Austin, TX",
			"canonical_name":   "Austin,TX,Texas,United States",
			"country_code":     "US",
			"target_type":      "DMA Region",
			"reach":            5560000,
			"gps":              []float64{-97.7430608, 30.267153},
			"keys":             []string{"austin", "tx", "texas", "united", "states"},
		},
		{
			"id":               "585069b9ee19ad271e9bb0a1",
			"google_id":        1026201,
			"google_parent_id": 21176,
			"name":             "Austin",
			"canonical_name":   "Austin,Texas,United States",
			"country_code":     "US",
			"target_type":      "City",
			"reach":            5310000,
			"gps":              []float64{-97.7430608, 30.267153},
			"keys":             []string{"austin", "texas", "united", "states"},
		},
	}

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit >= 0 && limit < len(locations) {
		locations = locations[:limit]
	}
	writeJSON(w, http.StatusOK, locations)
}

// searchHandler serves SearchPages pages selected by the start parameter.
// Every page but the last links to the next one.
func (m *MockSerpAPI) searchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("api_key") == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Invalid API key."})
		return
	}

	m.mu.RLock()
	pages := m.SearchPages
	m.mu.RUnlock()

	start, _ := strconv.Atoi(q.Get("start"))
	page := start/PageSize + 1

	organic := make([]map[string]any, 0, PageSize)
	for i := 0; i < PageSize; i++ {
		organic = append(organic, map[string]any{
			"position": start + i + 1,
			"title":    fmt.Sprintf("%s result %d", q.Get("q"), start+i+1),
		})
	}

	result := map[string]any{
		"search_metadata": map[string]any{"status": "Success"},
		"search_parameters": map[string]any{
			"engine": q.Get("engine"),
			"q":      q.Get("q"),
		},
		"organic_results": organic,
	}

	if page < pages {
		next := url.Values{}
		next.Set("engine", q.Get("engine"))
		next.Set("q", q.Get("q"))
		next.Set("start", strconv.Itoa(start+PageSize))
		result["serpapi_pagination"] = map[string]any{
			"current": page,
			"next":    "http://" + r.Host + "/search.json?" + next.Encode(),
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// NewJSONResponse creates a 200 OK response with a JSON body.
func NewJSONResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewErrorResponse creates an error response in the API's error format.
func NewErrorResponse(status int, message string) MockResponse {
	body, _ := json.Marshal(map[string]string{"error": message})
	return MockResponse{
		StatusCode: status,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewDelayedResponse creates a 200 OK response sent after delay.
func NewDelayedResponse(body string, delay time.Duration) MockResponse {
	resp := NewJSONResponse(body)
	resp.Delay = delay
	return resp
}
