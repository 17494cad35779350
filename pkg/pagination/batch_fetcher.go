package pagination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sternrassler/serpapi-go/pkg/params"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Config holds batch fetcher configuration.
type Config struct {
	// MaxConcurrency is the maximum number of searches walked in parallel
	MaxConcurrency int
	// Timeout bounds the walk of one search, all pages included
	Timeout time.Duration
	// MaxPages bounds the pages fetched per search; 0 means unbounded
	MaxPages int
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 4,
		Timeout:        2 * time.Minute,
		MaxPages:       10,
	}
}

// Result is the outcome of walking one search.
type Result struct {
	// Index is the position of the search in the FetchAll input
	Index  int
	Params params.Bag
	Pages  []Page
	Err    error
}

// BatchFetcher follows the pagination of several searches in parallel.
type BatchFetcher struct {
	fetch  FetchFunc
	config Config
}

// NewBatchFetcher creates a new batch fetcher.
func NewBatchFetcher(fetch FetchFunc, config Config) *BatchFetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}

	return &BatchFetcher{
		fetch:  fetch,
		config: config,
	}
}

// FetchAll walks every search and returns one Result per search, in input
// order. A failed walk keeps the pages fetched before the failure; the
// returned error joins the failures of all walks.
func (bf *BatchFetcher) FetchAll(ctx context.Context, searches []params.Bag) ([]Result, error) {
	start := time.Now()
	results := make([]Result, len(searches))

	log.Info().
		Int("searches", len(searches)).
		Int("max_concurrency", bf.config.MaxConcurrency).
		Msg("Starting batch page fetch")

	var g errgroup.Group
	g.SetLimit(bf.config.MaxConcurrency)

	for i, search := range searches {
		g.Go(func() error {
			walkCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
			defer cancel()

			pager := NewPager(bf.fetch, search, Options{MaxPages: bf.config.MaxPages})
			pages, err := pager.Collect(walkCtx)
			results[i] = Result{Index: i, Params: search, Pages: pages, Err: err}

			if err != nil {
				log.Warn().
					Err(err).
					Int("search", i).
					Int("pages", len(pages)).
					Msg("Search walk failed")
			}
			// Failures are reported per result; returning nil keeps the
			// other walks running.
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	pages := 0
	for _, r := range results {
		pages += len(r.Pages)
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("search %d: %w", r.Index, r.Err))
		}
	}

	if len(errs) > 0 {
		log.Warn().
			Int("failed", len(errs)).
			Int("searches", len(searches)).
			Msg("Batch fetch returning partial results")
		return results, fmt.Errorf("batch fetch (partial data: %d/%d searches failed): %w",
			len(errs), len(searches), errors.Join(errs...))
	}

	log.Info().
		Int("searches", len(searches)).
		Int("pages", pages).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	return results, nil
}
