// Package metrics exposes the Prometheus registry shared by the search client.
// All metrics are defined in their respective packages (client, cache,
// ratelimit, pagination) to maintain modularity and avoid circular
// dependencies.
//
// This package provides the HTTP handler and a reference of all available metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer is the gatherer matching Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the HTTP handler serving all registered metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - serpapi_requests_total{path, status} (Counter): Requests by path and HTTP status,
//     or timeout, aborted and transport_error for requests without a response
//   - serpapi_request_duration_seconds{path} (Histogram): Request duration by path
//   - serpapi_errors_total{class} (Counter): Errors by class (validation, timeout, aborted, transport, api)
//
// Cache Metrics (pkg/cache):
//   - serpapi_cache_hits_total (Counter): Cache hits
//   - serpapi_cache_misses_total (Counter): Cache misses
//   - serpapi_cache_expired_total (Counter): Stale entries evicted on read
//   - serpapi_cache_size_bytes (Counter): Bytes written to the cache
//   - serpapi_cache_errors_total{operation} (Counter): Cache operation errors
//
// Quota Metrics (pkg/ratelimit):
//   - serpapi_searches_left (Gauge): Searches left on the account
//   - serpapi_quota_blocks_total (Counter): Searches blocked by the quota guard
//
// Pagination Metrics (pkg/pagination):
//   - serpapi_pages_fetched_total (Counter): Result pages fetched by pagers
//   - serpapi_pagination_loops_total (Counter): Walks stopped on a repeated cursor
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(serpapi_cache_hits_total[5m])) /
//   (sum(rate(serpapi_cache_hits_total[5m])) + sum(rate(serpapi_cache_misses_total[5m])))
//
//   # Quota Status
//   serpapi_searches_left < 100
//
//   # Timeout Rate
//   rate(serpapi_errors_total{class="timeout"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(serpapi_request_duration_seconds_bucket[5m]))
