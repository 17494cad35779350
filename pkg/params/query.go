package params

import (
	"fmt"
	"net/url"
	"strings"
)

// FromQuery parses a raw query string into a bag of string values.
// Key order follows the query; a repeated key takes its last value.
// Malformed escapes are kept verbatim.
func FromQuery(rawQuery string) Bag {
	rawQuery = strings.TrimPrefix(rawQuery, "?")

	var entries []Param
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		entries = set(entries, unescape(key), String(unescape(value)))
	}
	return Bag{entries: entries}
}

// FromURL parses an absolute URL and returns its query parameters.
func FromURL(rawURL string) (Bag, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Bag{}, fmt.Errorf("parse url: %w", err)
	}
	if !u.IsAbs() {
		return Bag{}, fmt.Errorf("parse url: %q is not absolute", rawURL)
	}
	return FromQuery(u.RawQuery), nil
}

func unescape(s string) string {
	if out, err := url.QueryUnescape(s); err == nil {
		return out
	}
	return s
}
