package tables

import (
	"context"

	"github.com/dgallion1/boardkin/internal/document"
)

// PageCache memoizes per-page extraction results for one document, so the
// stitcher's forward lookups never re-run detection on a page already seen.
// It is scoped to a single pipeline run and is not safe for concurrent use.
type PageCache struct {
	extractor Extractor
	path      string
	pages     map[int][]document.RawTable
}

func NewPageCache(e Extractor, path string) *PageCache {
	return &PageCache{
		extractor: e,
		path:      path,
		pages:     make(map[int][]document.RawTable),
	}
}

// Extract returns the tables on the given pages, in page order, fetching
// uncached pages in a single extractor call.
func (c *PageCache) Extract(ctx context.Context, pages []int) ([]document.RawTable, error) {
	var missing []int
	seen := make(map[int]bool, len(pages))
	for _, p := range pages {
		if _, ok := c.pages[p]; !ok && !seen[p] {
			missing = append(missing, p)
		}
		seen[p] = true
	}

	if len(missing) > 0 {
		found, err := c.extractor.Extract(ctx, c.path, missing)
		if err != nil {
			return nil, err
		}
		for _, p := range missing {
			c.pages[p] = []document.RawTable{}
		}
		for _, t := range found {
			c.pages[t.Page] = append(c.pages[t.Page], t)
		}
	}

	var out []document.RawTable
	for _, p := range pages {
		out = append(out, c.pages[p]...)
	}
	return out, nil
}

// Lookup returns the tables on one page. It satisfies LookupFunc.
func (c *PageCache) Lookup(ctx context.Context, page int) ([]document.RawTable, error) {
	return c.Extract(ctx, []int{page})
}
