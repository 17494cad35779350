package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"github.com/Sternrassler/serpapi-go/pkg/cache"
	"github.com/Sternrassler/serpapi-go/pkg/pagination"
	"github.com/Sternrassler/serpapi-go/pkg/params"
	"github.com/Sternrassler/serpapi-go/pkg/ratelimit"
)

// AccountInformation is the payload of the account endpoint.
type AccountInformation struct {
	AccountEmail            string `json:"account_email"`
	AccountID               string `json:"account_id"`
	AccountRateLimitPerHour int    `json:"account_rate_limit_per_hour"`
	APIKey                  string `json:"api_key"`
	ExtraCredits            int    `json:"extra_credits"`
	LastHourSearches        int    `json:"last_hour_searches"`
	PlanID                  string `json:"plan_id"`
	PlanName                string `json:"plan_name"`
	PlanSearchesLeft        int    `json:"plan_searches_left"`
	SearchesPerMonth        int    `json:"searches_per_month"`
	ThisHourSearches        int    `json:"this_hour_searches"`
	ThisMonthUsage          int    `json:"this_month_usage"`
	TotalSearchesLeft       int    `json:"total_searches_left"`
}

// Location is one entry of the locations endpoint.
type Location struct {
	CanonicalName  string     `json:"canonical_name"`
	CountryCode    string     `json:"country_code"`
	GoogleID       int64      `json:"google_id"`
	GoogleParentID int64      `json:"google_parent_id"`
	GPS            [2]float64 `json:"gps"`
	ID             string     `json:"id"`
	Keys           []string   `json:"keys"`
	Name           string     `json:"name"`
	Reach          int64      `json:"reach"`
	TargetType     string     `json:"target_type"`
}

// Locations is the payload of the locations endpoint.
type Locations []Location

// LocationsParams filters the locations endpoint. Zero values are omitted.
type LocationsParams struct {
	Q     string
	Limit int
}

// GetAccount returns the account information for the resolved API key.
func (c *Client) GetAccount(ctx context.Context, opts ...CallOption) (*AccountInformation, error) {
	o := collectOptions(opts)

	apiKey, err := c.config.ResolveAPIKey(o.apiKey)
	if err != nil {
		countError(err)
		return nil, err
	}
	timeout, err := c.config.ResolveTimeout(o.timeout)
	if err != nil {
		countError(err)
		return nil, err
	}

	body, _, err := c.fetch(ctx, AccountPath, params.New(params.P("api_key", apiKey)), timeout, cacheBypass)
	if err != nil {
		return nil, err
	}

	var info AccountInformation
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}

	if c.quota != nil {
		if err := c.quota.UpdateFromAccount(ctx, ratelimit.Snapshot{
			SearchesLeft: info.TotalSearchesLeft,
			HourlyLimit:  info.AccountRateLimitPerHour,
			ThisHour:     info.ThisHourSearches,
		}); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update quota from account")
		}
	}

	return &info, nil
}

// GetLocations returns the supported locations. No API key is required.
func (c *Client) GetLocations(ctx context.Context, lp LocationsParams, opts ...CallOption) (Locations, error) {
	o := collectOptions(opts)

	timeout, err := c.config.ResolveTimeout(o.timeout)
	if err != nil {
		countError(err)
		return nil, err
	}

	bag := params.New()
	if lp.Q != "" {
		bag = bag.With("q", lp.Q)
	}
	if lp.Limit > 0 {
		bag = bag.With("limit", lp.Limit)
	}

	body, _, err := c.fetch(ctx, LocationsPath, bag, timeout, cacheReadWrite)
	if err != nil {
		return nil, err
	}

	var locations Locations
	if err := json.Unmarshal(body, &locations); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	return locations, nil
}

// Search runs a search on engine and decodes the JSON result.
func (c *Client) Search(ctx context.Context, engine string, p params.Bag, opts ...CallOption) (map[string]any, error) {
	body, err := c.SearchRaw(ctx, engine, p, opts...)
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode search result: %w", err)
	}
	return result, nil
}

// SearchRaw runs a search on engine and returns the response body.
//
// An api_key entry in p counts as an explicit key; WithAPIKey takes
// precedence over it. The engine argument always wins over an engine entry
// in p. no_cache=true bypasses the response cache.
func (c *Client) SearchRaw(ctx context.Context, engine string, p params.Bag, opts ...CallOption) ([]byte, error) {
	o := collectOptions(opts)

	apiKey, err := c.config.ResolveAPIKey(o.explicitAPIKey(p))
	if err != nil {
		countError(err)
		return nil, err
	}
	timeout, err := c.config.ResolveTimeout(o.timeout)
	if err != nil {
		countError(err)
		return nil, err
	}

	if c.config.QuotaGuard {
		allowed, err := c.quota.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Quota check failed")
		} else if !allowed {
			countError(ErrQuotaExhausted)
			return nil, ErrQuotaExhausted
		}
	}

	bag := p.With("engine", engine).With("api_key", apiKey)
	policy := cacheReadWrite
	if bag.Lookup("no_cache").String() == "true" {
		policy = cacheRefresh
	}

	body, fromNetwork, err := c.fetch(ctx, SearchPath, bag, timeout, policy)
	if err != nil {
		return nil, err
	}

	if fromNetwork && c.quota != nil {
		if err := c.quota.RecordSearch(ctx); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to record search against quota")
		}
	}

	return body, nil
}

// SearchPages follows the pagination of a search lazily. Iteration stops
// when a page carries no next link, when the next link repeats the current
// parameters, or after Config.MaxPages pages. Ranging over the sequence
// again starts over from the first page.
func (c *Client) SearchPages(ctx context.Context, engine string, p params.Bag, opts ...CallOption) iter.Seq2[pagination.Page, error] {
	return c.pager(engine, p, opts).Pages(ctx)
}

// NewBatchFetcher returns a fetcher that follows the pagination of several
// searches on engine concurrently.
func (c *Client) NewBatchFetcher(engine string, cfg pagination.Config, opts ...CallOption) *pagination.BatchFetcher {
	if cfg.MaxPages == 0 {
		cfg.MaxPages = c.config.MaxPages
	}
	return pagination.NewBatchFetcher(c.searchFunc(engine, opts), cfg)
}

func (c *Client) pager(engine string, p params.Bag, opts []CallOption) *pagination.Pager {
	return pagination.NewPager(c.searchFunc(engine, opts), p, pagination.Options{
		MaxPages: c.config.MaxPages,
		Logger:   &c.logger,
	})
}

func (c *Client) searchFunc(engine string, opts []CallOption) pagination.FetchFunc {
	return func(ctx context.Context, p params.Bag) ([]byte, error) {
		return c.SearchRaw(ctx, engine, p, opts...)
	}
}

type cachePolicy int

const (
	// cacheBypass neither reads nor writes the cache.
	cacheBypass cachePolicy = iota
	// cacheRefresh skips the read but stores the fresh response.
	cacheRefresh
	// cacheReadWrite serves hits and stores misses.
	cacheReadWrite
)

// fetch executes a request and reads the body, using the response cache
// according to policy. Non-2xx responses become *APIError.
// fromNetwork is false when the body came from the cache.
func (c *Client) fetch(ctx context.Context, path string, bag params.Bag, timeout time.Duration, policy cachePolicy) (body []byte, fromNetwork bool, err error) {
	key := cache.Key{Path: path, Params: bag}

	if c.cache != nil && policy == cacheReadWrite {
		entry, err := c.cache.Get(ctx, key)
		switch {
		case err == nil:
			c.logger.Debug().Str("path", path).Msg("Serving response from cache")
			return entry.Data, false, nil
		case !errors.Is(err, cache.ErrCacheMiss):
			c.logger.Warn().Err(err).Str("path", path).Msg("Cache get error")
		}
	}

	resp, err := c.Execute(ctx, path, bag, timeout)
	if err != nil {
		return nil, false, err
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(ErrorClassTransport)).Inc()
		return nil, false, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errorsTotal.WithLabelValues(string(ErrorClassAPI)).Inc()
		apiErr := newAPIError(resp.StatusCode, body)
		c.logger.Warn().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("error", apiErr.Message).
			Msg("API request error")
		return nil, true, apiErr
	}

	if c.cache != nil && policy != cacheBypass && resp.StatusCode == http.StatusOK {
		entry := cache.NewEntry(resp.StatusCode, resp.Header, body, c.config.CacheTTL)
		if err := c.cache.Set(ctx, key, entry); err != nil {
			c.logger.Warn().Err(err).Str("path", path).Msg("Failed to cache response")
		}
	}

	return body, true, nil
}
