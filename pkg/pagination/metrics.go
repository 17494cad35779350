package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PagesFetched counts result pages fetched while following pagination.
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "serpapi_pages_fetched_total",
		Help: "Total number of result pages fetched by pagers",
	})

	// LoopsDetected counts walks stopped because the next link repeated the
	// current parameters.
	LoopsDetected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "serpapi_pagination_loops_total",
		Help: "Total number of pagination walks stopped on a repeated cursor",
	})
)
