package pagination

import (
	"context"
	"fmt"
	"iter"

	"github.com/Sternrassler/serpapi-go/pkg/params"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// FetchFunc fetches one result page for a parameter bag.
type FetchFunc func(ctx context.Context, p params.Bag) ([]byte, error)

// Page is one fetched result page.
type Page struct {
	// Number is 1 for the first page
	Number int
	// Params are the parameters the page was requested with
	Params params.Bag
	// Body is the raw JSON result
	Body []byte
}

// Options configures a Pager.
type Options struct {
	// MaxPages stops the walk after this many pages; 0 means unbounded
	MaxPages int
	// Logger defaults to the global logger
	Logger *zerolog.Logger
}

// Pager walks the pages of one search.
type Pager struct {
	fetch   FetchFunc
	initial params.Bag
	opts    Options
	logger  zerolog.Logger
}

// NewPager creates a pager starting from initial.
func NewPager(fetch FetchFunc, initial params.Bag, opts Options) *Pager {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Pager{
		fetch:   fetch,
		initial: initial,
		opts:    opts,
		logger:  logger.With().Str("component", "pager").Logger(),
	}
}

// Pages returns a lazy sequence of pages. Nothing is fetched until the
// sequence is ranged over, and every range starts again from the first page.
// A failed fetch yields the error and ends the sequence.
func (p *Pager) Pages(ctx context.Context) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		current := p.initial

		for number := 1; ; number++ {
			if err := ctx.Err(); err != nil {
				yield(Page{Number: number, Params: current}, err)
				return
			}

			body, err := p.fetch(ctx, current)
			if err != nil {
				yield(Page{Number: number, Params: current}, fmt.Errorf("fetch page %d: %w", number, err))
				return
			}
			PagesFetched.Inc()

			if !yield(Page{Number: number, Params: current, Body: body}, nil) {
				return
			}

			if p.opts.MaxPages > 0 && number >= p.opts.MaxPages {
				p.logger.Debug().Int("max_pages", p.opts.MaxPages).Msg("Page limit reached")
				return
			}

			next, ok, err := ExtractNext(body)
			if err != nil {
				yield(Page{Number: number + 1}, err)
				return
			}
			if !ok {
				p.logger.Debug().Int("pages", number).Msg("No further pages")
				return
			}

			// The cursor mirrors the server's view of the request; caller
			// parameters it does not echo (api_key, no_cache) carry over.
			merged := p.initial.Merge(next)
			if !params.Changed(current, merged) {
				LoopsDetected.Inc()
				p.logger.Warn().
					Int("page", number).
					Object("params", current).
					Msg("Next page repeats current parameters, stopping")
				return
			}
			current = merged
		}
	}
}

// Collect fetches all pages. On error it returns the pages fetched so far.
func (p *Pager) Collect(ctx context.Context) ([]Page, error) {
	var pages []Page
	for page, err := range p.Pages(ctx) {
		if err != nil {
			return pages, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}
