package tables

import (
	"context"
	"math"

	"github.com/dgallion1/boardkin/internal/document"
)

const (
	DefaultWidthTolerance = 3.0
	DefaultEdgeRatio      = 0.15
)

// LookupFunc returns the tables detected on a 1-based page, top to bottom.
type LookupFunc func(ctx context.Context, page int) ([]document.RawTable, error)

// Stitcher reassembles tables that were split across consecutive pages.
type Stitcher struct {
	NameHeader     string
	PositionHeader string

	// PageHeight is the reference page height used for the edge checks.
	PageHeight float64
	// Tolerance is the absolute column-width tolerance.
	Tolerance float64
	// EdgeRatio is the fraction of the page height treated as top/bottom margin band.
	EdgeRatio float64
}

// NewStitcher returns a Stitcher with the default tolerance and edge band.
func NewStitcher(nameHeader, positionHeader string, pageHeight float64) *Stitcher {
	return &Stitcher{
		NameHeader:     nameHeader,
		PositionHeader: positionHeader,
		PageHeight:     pageHeight,
		Tolerance:      DefaultWidthTolerance,
		EdgeRatio:      DefaultEdgeRatio,
	}
}

// IsHeaderTable reports whether the first row contains both configured headers.
func (s *Stitcher) IsHeaderTable(t document.RawTable) bool {
	var hasName, hasPosition bool
	for _, cell := range t.Header() {
		switch cell {
		case s.NameHeader:
			hasName = true
		case s.PositionHeader:
			hasPosition = true
		}
	}
	return hasName && hasPosition
}

// IsContinuationCandidate reports whether the first row carries neither header.
// A fragment that repeats any header cell starts a table of its own.
func (s *Stitcher) IsContinuationCandidate(t document.RawTable) bool {
	for _, cell := range t.Header() {
		if cell == s.NameHeader || cell == s.PositionHeader {
			return false
		}
	}
	return true
}

// United reports whether b, on the page after a, continues a.
// a must end in the bottom band of the page, b must start in the top band,
// and both must share the column layout.
func (s *Stitcher) United(a, b document.RawTable) bool {
	if b.Page != a.Page+1 {
		return false
	}
	if len(a.Columns) != len(b.Columns) {
		return false
	}

	if !(a.BBox.Y0 < s.EdgeRatio*s.PageHeight && b.BBox.Y1 > (1-s.EdgeRatio)*s.PageHeight) {
		return false
	}

	for i := range a.Columns {
		if math.Abs(a.Columns[i].Width()-b.Columns[i].Width()) > s.Tolerance {
			return false
		}
	}
	return true
}

// Stitch merges every header table in tables with its continuations and
// returns one LogicalTable per header table. Tables that are not header
// tables are dropped. lookup is consulted for the pages following each head,
// never beyond totalPages.
func (s *Stitcher) Stitch(ctx context.Context, tables []document.RawTable, lookup LookupFunc, totalPages int) ([]document.LogicalTable, error) {
	var out []document.LogicalTable
	for _, head := range tables {
		if !s.IsHeaderTable(head) {
			continue
		}
		parts, err := s.continuations(ctx, head, lookup, totalPages)
		if err != nil {
			return nil, err
		}
		out = append(out, merge(head, parts))
	}
	return out, nil
}

// continuations walks forward page by page while the first table on the next
// page continues the current fragment.
func (s *Stitcher) continuations(ctx context.Context, head document.RawTable, lookup LookupFunc, totalPages int) ([]document.RawTable, error) {
	var parts []document.RawTable
	current := head
	for page := head.Page + 1; page <= totalPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := lookup(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(next) == 0 {
			break
		}
		candidate := next[0]
		if !s.IsContinuationCandidate(candidate) || !s.United(current, candidate) {
			break
		}
		parts = append(parts, candidate)
		current = candidate
	}
	return parts, nil
}

// merge labels every fragment with the head's header and concatenates rows in page order.
func merge(head document.RawTable, parts []document.RawTable) document.LogicalTable {
	header := head.Header()
	lt := document.LogicalTable{Columns: append([]string(nil), header...)}
	for _, row := range head.Rows[1:] {
		lt.Append(row)
	}
	for _, part := range parts {
		for _, row := range part.Rows {
			lt.Append(row)
		}
	}
	return lt
}
