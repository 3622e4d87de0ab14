package document

import "errors"

var (
	// ErrMalformedDocument means the PDF could not be parsed at the syntax level.
	// The document must be abandoned.
	ErrMalformedDocument = errors.New("malformed document")

	// ErrAlignment means per-segment records fell out of step with their source texts.
	ErrAlignment = errors.New("segment alignment violated")
)

// Page is one page of extracted plain text.
type Page struct {
	Index int    // 0-based position in the document
	Text  string // Plain text of the page
}

// PageIndex is the ordered, read-only set of pages of one document.
type PageIndex struct {
	pages []Page
}

// NewPageIndex wraps per-page texts in document order.
func NewPageIndex(texts []string) *PageIndex {
	pages := make([]Page, len(texts))
	for i, t := range texts {
		pages[i] = Page{Index: i, Text: t}
	}
	return &PageIndex{pages: pages}
}

// Len returns the number of pages.
func (p *PageIndex) Len() int {
	return len(p.pages)
}

// Page returns the page with the given 1-based number.
func (p *PageIndex) Page(number int) (Page, bool) {
	if number < 1 || number > len(p.pages) {
		return Page{}, false
	}
	return p.pages[number-1], true
}

// Pages returns a copy of all pages.
func (p *PageIndex) Pages() []Page {
	out := make([]Page, len(p.pages))
	copy(out, p.pages)
	return out
}

// Texts returns the page texts in order.
func (p *PageIndex) Texts() []string {
	out := make([]string, len(p.pages))
	for i, pg := range p.pages {
		out[i] = pg.Text
	}
	return out
}
