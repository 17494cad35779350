package client

import "github.com/Sternrassler/serpapi-go/pkg/params"

// DefaultBaseURL is the origin of the hosted API.
const DefaultBaseURL = "https://serpapi.com"

// Paths of the endpoints used by the convenience calls.
const (
	SearchPath    = "/search"
	AccountPath   = "/account"
	LocationsPath = "/locations.json"
)

// BuildURL joins baseURL, path and the encoded parameters. Absent values are
// dropped and the parameter order is preserved.
func BuildURL(baseURL, path string, p params.Bag) string {
	return baseURL + path + "?" + p.Encode()
}

// BuildURL builds a URL against the client's configured origin.
func (c *Client) BuildURL(path string, p params.Bag) string {
	return BuildURL(c.baseURL, path, p)
}
