package client

import (
	"time"

	"github.com/Sternrassler/serpapi-go/pkg/params"
)

// ResolveAPIKey returns the API key for a call.
//
// An explicit key is used as given, whitespace included; an explicit empty
// key is rejected without consulting the configuration. Without an explicit
// key the configured default is used.
func (c Config) ResolveAPIKey(explicit *string) (string, error) {
	if explicit != nil {
		if *explicit == "" {
			return "", ErrMissingCredential
		}
		return *explicit, nil
	}
	if c.APIKey == "" {
		return "", ErrMissingCredential
	}
	return c.APIKey, nil
}

// ResolveTimeout returns the timeout for a call.
//
// An explicit timeout must be positive; the configured default is never
// consulted when an explicit value was given.
func (c Config) ResolveTimeout(explicit *time.Duration) (time.Duration, error) {
	if explicit != nil {
		if *explicit <= 0 {
			return 0, ErrInvalidTimeout
		}
		return *explicit, nil
	}
	if c.Timeout <= 0 {
		return 0, ErrInvalidTimeout
	}
	return c.Timeout, nil
}

// CallOption overrides a configured default for a single call.
type CallOption func(*callOptions)

type callOptions struct {
	apiKey  *string
	timeout *time.Duration
}

// WithAPIKey sets the API key for one call. An empty key is an error, not a
// request for the configured default.
func WithAPIKey(key string) CallOption {
	return func(o *callOptions) {
		o.apiKey = &key
	}
}

// WithTimeout sets the timeout for one call.
func WithTimeout(d time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = &d
	}
}

func collectOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// explicitAPIKey returns the key set by option, falling back to an api_key
// entry of the parameter bag.
func (o callOptions) explicitAPIKey(p params.Bag) *string {
	if o.apiKey != nil {
		return o.apiKey
	}
	if p.Has("api_key") {
		key := p.Lookup("api_key").String()
		return &key
	}
	return nil
}
