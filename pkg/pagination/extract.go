package pagination

import (
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/serpapi-go/pkg/params"
)

// RoutingKey is removed from next-page parameters.
const RoutingKey = "engine"

// NextLink holds a next-page URL.
type NextLink struct {
	Next string `json:"next"`
}

// Links is the pagination subset of a result page.
type Links struct {
	SerpAPIPagination *NextLink `json:"serpapi_pagination,omitempty"`
	Pagination        *NextLink `json:"pagination,omitempty"`
}

// NextURL returns the next-page URL, preferring serpapi_pagination over
// pagination. It returns "" when neither is set.
func (l Links) NextURL() string {
	if l.SerpAPIPagination != nil && l.SerpAPIPagination.Next != "" {
		return l.SerpAPIPagination.Next
	}
	if l.Pagination != nil {
		return l.Pagination.Next
	}
	return ""
}

// Next returns the parameters of the next page. ok is false when there is no
// next page. All values are strings.
func (l Links) Next() (next params.Bag, ok bool, err error) {
	rawURL := l.NextURL()
	if rawURL == "" {
		return params.Bag{}, false, nil
	}

	bag, err := params.FromURL(rawURL)
	if err != nil {
		return params.Bag{}, false, fmt.Errorf("parse next page url: %w", err)
	}
	return bag.Without(RoutingKey), true, nil
}

// ExtractNext decodes the pagination links of a JSON result page and returns
// the parameters of the next page. A pagination section that is not an
// object is treated as missing.
func ExtractNext(body []byte) (params.Bag, bool, error) {
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		return params.Bag{}, false, fmt.Errorf("decode pagination: %w", err)
	}
	return ExtractNextFromMap(result)
}

// ExtractNextFromMap is ExtractNext for an already decoded result page.
func ExtractNextFromMap(result map[string]any) (params.Bag, bool, error) {
	return Links{
		SerpAPIPagination: linkFromMap(result, "serpapi_pagination"),
		Pagination:        linkFromMap(result, "pagination"),
	}.Next()
}

func linkFromMap(result map[string]any, field string) *NextLink {
	section, ok := result[field].(map[string]any)
	if !ok {
		return nil
	}
	next, _ := section["next"].(string)
	return &NextLink{Next: next}
}
