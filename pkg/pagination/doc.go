// Package pagination follows the next-page links of search results.
//
// Result pages carry an absolute URL to the next page under
// serpapi_pagination.next, or under pagination.next for engines without the
// former. ExtractNext turns that URL into the parameter bag for the next
// request, dropping the engine key because the caller fixes the engine for
// the whole session.
//
// A Pager walks the pages of one search lazily:
//
//	pager := pagination.NewPager(fetch, params.New(params.P("q", "coffee")), pagination.Options{MaxPages: 5})
//	for page, err := range pager.Pages(ctx) {
//		if err != nil {
//			return err
//		}
//		handle(page.Body)
//	}
//
// The walk ends when a page has no next link, when the next link repeats the
// parameters of the current page (servers that echo the same cursor forever),
// or after MaxPages pages.
//
// A BatchFetcher walks several searches concurrently with bounded
// concurrency and returns partial results when some walks fail.
package pagination
