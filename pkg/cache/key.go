package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"

	"github.com/Sternrassler/serpapi-go/pkg/params"
)

// KeyPrefix starts every cache key.
const KeyPrefix = "serpapi"

// ignoredParams do not affect the response and are left out of keys.
var ignoredParams = map[string]bool{
	"source":   true,
	"no_cache": true,
}

// Key identifies a cached response.
type Key struct {
	// Path is the endpoint path (e.g., "/search")
	Path string

	// Params are the request parameters
	Params params.Bag
}

// String generates a deterministic cache key string.
// Format: serpapi:path:param1=val1:param2=val2
//
// Names and values are query-escaped so a ':' or '=' inside a value
// cannot mimic a separator.
//
// Example:
//
//	serpapi:search:api_key=#9f86d081884c7d65:engine=google:q=coffee
func (k Key) String() string {
	parts := []string{KeyPrefix}

	// Add path (normalize slashes)
	path := strings.Trim(k.Path, "/")
	if path != "" {
		parts = append(parts, path)
	}

	// Add params (sorted for determinism)
	values := k.Params.Strings()
	keys := make([]string, 0, len(values))
	for key := range values {
		if !ignoredParams[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := url.QueryEscape(values[key])
		if key == "api_key" {
			value = digest(values[key])
		}
		parts = append(parts, url.QueryEscape(key)+"="+value)
	}

	return strings.Join(parts, ":")
}

// digest masks a credential while keeping keys distinct per account.
func digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return "#" + hex.EncodeToString(sum[:8])
}
