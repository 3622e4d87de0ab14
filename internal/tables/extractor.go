package tables

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dgallion1/boardkin/internal/document"
	"github.com/tsawler/tabula/core"
	"github.com/tsawler/tabula/graphicsstate"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/pages"
	"github.com/tsawler/tabula/reader"
	tabtables "github.com/tsawler/tabula/tables"
	"github.com/tsawler/tabula/text"
)

// Extractor detects tables on selected pages of a PDF.
type Extractor interface {
	// Extract returns the tables found on the given 1-based pages, grouped by
	// page in the order requested and top to bottom within a page.
	Extract(ctx context.Context, path string, pages []int) ([]document.RawTable, error)
}

// TabulaExtractor detects tables with tabula's geometric detector.
type TabulaExtractor struct {
	Config tabtables.Config
}

func NewTabulaExtractor() *TabulaExtractor {
	return &TabulaExtractor{Config: tabtables.DefaultConfig()}
}

func (e *TabulaExtractor) Extract(ctx context.Context, path string, pageNums []int) (tables []document.RawTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			tables, err = nil, fmt.Errorf("table extraction: %w: panic: %v", document.ErrMalformedDocument, r)
		}
	}()

	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w: %w", document.ErrMalformedDocument, err)
	}
	defer r.Close()

	count, err := r.PageCount()
	if err != nil {
		return nil, fmt.Errorf("page count: %w: %w", document.ErrMalformedDocument, err)
	}

	detector := tabtables.NewGeometricDetector()
	if err := detector.Configure(e.Config); err != nil {
		return nil, fmt.Errorf("configure detector: %w", err)
	}

	for _, n := range pageNums {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := pageInRange(n, count); err != nil {
			return nil, err
		}
		found, err := e.extractPage(r, detector, n)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", n, err)
		}
		tables = append(tables, found...)
	}
	return tables, nil
}

// pageInRange rejects pages the table reader does not see, which happens when
// the text and table readers disagree on the page count.
func pageInRange(n, count int) error {
	if n < 1 || n > count {
		return fmt.Errorf("%w: page %d out of range (1-%d)", document.ErrMalformedDocument, n, count)
	}
	return nil
}

func (e *TabulaExtractor) extractPage(r *reader.Reader, detector *tabtables.GeometricDetector, n int) ([]document.RawTable, error) {
	page, err := r.GetPage(n - 1)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", document.ErrMalformedDocument, err)
	}
	width, err := page.Width()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", document.ErrMalformedDocument, err)
	}
	height, err := page.Height()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", document.ErrMalformedDocument, err)
	}
	fragments, err := r.ExtractTextFragments(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", document.ErrMalformedDocument, err)
	}

	graphics, err := extractGraphics(page)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", document.ErrMalformedDocument, err)
	}
	gridLines := graphics.GetGridLines()

	mp := model.NewPage(width, height)
	mp.Number = n
	mp.RawText = toModelFragments(fragments)
	mp.RawLines = toModelLines(gridLines)

	detected, err := detector.Detect(mp)
	if err != nil {
		return nil, fmt.Errorf("detect tables: %w", err)
	}

	var grids []*model.TableGrid
	for _, h := range tabtables.NewGridDetector().DetectFromLines(gridLines.Horizontals, gridLines.Verticals) {
		grids = append(grids, h.ToTableGrid())
	}

	out := make([]document.RawTable, 0, len(detected))
	for _, t := range detected {
		out = append(out, convertTable(n, t, grids))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].BBox.Y1 > out[j].BBox.Y1
	})
	return out, nil
}

func toModelFragments(fragments []text.TextFragment) []model.TextFragment {
	result := make([]model.TextFragment, len(fragments))
	for i, f := range fragments {
		result[i] = model.TextFragment{
			Text:     f.Text,
			BBox:     model.BBox{X: f.X, Y: f.Y, Width: f.Width, Height: f.Height},
			FontSize: f.FontSize,
			FontName: f.FontName,
		}
	}
	return result
}

// extractGraphics runs the page's content streams through a graphics
// extractor to recover ruling lines.
func extractGraphics(page *pages.Page) (*graphicsstate.GraphicsExtractor, error) {
	ge := graphicsstate.NewGraphicsExtractor()
	contents, err := page.Contents()
	if err != nil {
		return nil, fmt.Errorf("page contents: %w", err)
	}
	var data []byte
	for _, obj := range contents {
		stream, ok := obj.(*core.Stream)
		if !ok {
			continue
		}
		decoded, err := stream.Decode()
		if err != nil {
			return nil, fmt.Errorf("decode content stream: %w", err)
		}
		data = append(data, decoded...)
	}
	if len(data) == 0 {
		return ge, nil
	}
	if err := ge.ExtractFromBytes(data); err != nil {
		return nil, fmt.Errorf("extract graphics: %w", err)
	}
	return ge, nil
}

func toModelLines(gl graphicsstate.GridLines) []model.Line {
	lines := make([]model.Line, 0, len(gl.Horizontals)+len(gl.Verticals))
	for _, group := range [][]graphicsstate.ExtractedLine{gl.Horizontals, gl.Verticals} {
		for _, l := range group {
			lines = append(lines, model.Line{Start: l.Start, End: l.End, Width: l.Width})
		}
	}
	return lines
}

// convertTable flattens a detected table into a RawTable. Column boundaries
// come from the ruling grid that encloses the table when one has a matching
// column count; otherwise from the text layout.
func convertTable(page int, t *model.Table, grids []*model.TableGrid) document.RawTable {
	raw := document.RawTable{
		Page: page,
		BBox: document.BBox{
			X0: t.BBox.Left(),
			Y0: t.BBox.Bottom(),
			X1: t.BBox.Right(),
			Y1: t.BBox.Top(),
		},
	}

	if g := rulingGrid(t, grids); g != nil {
		raw.Columns = make([]document.Column, g.ColCount())
		for j := range raw.Columns {
			raw.Columns[j] = document.Column{Left: g.Cols[j], Right: g.Cols[j+1]}
		}
	} else {
		raw.Columns = textColumns(t)
	}

	raw.Rows = make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell.Text)
		}
		raw.Rows[i] = cells
	}
	return raw
}

// rulingGrid returns the grid overlapping t with the same number of columns,
// preferring the one covering most of the table.
func rulingGrid(t *model.Table, grids []*model.TableGrid) *model.TableGrid {
	var best *model.TableGrid
	bestArea := 0.0
	for _, g := range grids {
		if g.ColCount() != t.ColCount() || g.RowCount() == 0 {
			continue
		}
		area := t.BBox.Intersection(gridBBox(g)).Area()
		if area > bestArea {
			best, bestArea = g, area
		}
	}
	return best
}

func gridBBox(g *model.TableGrid) model.BBox {
	top, bottom := g.Rows[0], g.Rows[len(g.Rows)-1]
	if bottom > top {
		top, bottom = bottom, top
	}
	return model.BBox{
		X:      g.Cols[0],
		Y:      bottom,
		Width:  g.Cols[len(g.Cols)-1] - g.Cols[0],
		Height: top - bottom,
	}
}

// textColumns derives boundaries for unruled tables. Each column starts at the
// leftmost text in it and ends where the next column starts; the last column
// ends at the table edge. Left edges of left-aligned cells do not move with
// text length, so fragments of one layout yield equal widths.
func textColumns(t *model.Table) []document.Column {
	cols := t.ColCount()
	lefts := make([]float64, cols)
	for j := range lefts {
		lefts[j] = math.Inf(1)
		for _, row := range t.Rows {
			if j >= len(row) || strings.TrimSpace(row[j].Text) == "" {
				continue
			}
			lefts[j] = math.Min(lefts[j], row[j].BBox.Left())
		}
	}

	columns := make([]document.Column, cols)
	for j := 0; j < cols; j++ {
		if math.IsInf(lefts[j], 1) {
			continue
		}
		right := t.BBox.Right()
		for k := j + 1; k < cols; k++ {
			if !math.IsInf(lefts[k], 1) {
				right = lefts[k]
				break
			}
		}
		columns[j] = document.Column{Left: lefts[j], Right: right}
	}
	return columns
}
