package tables

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/boardkin/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsawler/tabula/model"
)

func cell(text string, x, y, w float64) model.Cell {
	return model.Cell{Text: text, BBox: model.NewBBox(x, y, w, 12)}
}

// headFragment ends near the bottom of an A4 page; tailFragment starts near the
// top of the next one. Both share one ruled layout but hold names of
// different lengths.
func headFragment() *model.Table {
	return &model.Table{
		BBox: model.NewBBox(60, 60, 220, 720),
		Rows: [][]model.Cell{
			{cell("姓名", 60, 768, 24), cell("职务", 160, 768, 24)},
			{cell("欧阳建国", 60, 700, 48), cell("董事长", 160, 700, 36)},
		},
	}
}

func tailFragment() *model.Table {
	return &model.Table{
		BBox: model.NewBBox(60, 500, 124, 300),
		Rows: [][]model.Cell{
			{cell("李四", 60, 788, 24), cell("董事", 160, 788, 24)},
		},
	}
}

func TestConvertTable(t *testing.T) {
	tbl := &model.Table{
		BBox: model.NewBBox(50, 40, 400, 560),
		Rows: [][]model.Cell{
			{{Text: " 姓名 ", BBox: model.NewBBox(60, 580, 30, 12)}, {Text: "职务", BBox: model.NewBBox(200, 580, 30, 12)}},
			{{Text: "张三", BBox: model.NewBBox(55, 560, 40, 12)}, {Text: "董事长", BBox: model.NewBBox(200, 560, 60, 12)}},
			{{Text: "", BBox: model.NewBBox(0, 0, 500, 12)}, {Text: "\t", BBox: model.NewBBox(0, 0, 500, 12)}},
		},
	}

	raw := convertTable(7, tbl, nil)
	assert.Equal(t, 7, raw.Page)
	assert.Equal(t, document.BBox{X0: 50, Y0: 40, X1: 450, Y1: 600}, raw.BBox)
	assert.Equal(t, []document.Column{{Left: 55, Right: 200}, {Left: 200, Right: 450}}, raw.Columns,
		"blank cells do not move column edges")
	assert.Equal(t, [][]string{{"姓名", "职务"}, {"张三", "董事长"}, {"", ""}}, raw.Rows)
}

func TestConvertTableEmptyColumn(t *testing.T) {
	tbl := &model.Table{
		BBox: model.NewBBox(0, 0, 100, 10),
		Rows: [][]model.Cell{
			{{Text: "a", BBox: model.NewBBox(0, 0, 10, 10)}, {Text: ""}},
		},
	}
	raw := convertTable(1, tbl, nil)
	require.Len(t, raw.Columns, 2)
	assert.Equal(t, document.Column{Left: 0, Right: 100}, raw.Columns[0])
	assert.Zero(t, raw.Columns[1].Width())
}

func TestConvertTableRulingGrid(t *testing.T) {
	grid := &model.TableGrid{Rows: []float64{800, 60}, Cols: []float64{50, 150, 300}}
	other := &model.TableGrid{Rows: []float64{400, 300}, Cols: []float64{350, 400, 450}}

	raw := convertTable(2, headFragment(), []*model.TableGrid{other, grid})
	assert.Equal(t, []document.Column{{Left: 50, Right: 150}, {Left: 150, Right: 300}}, raw.Columns)
}

func TestConvertTableGridColumnMismatch(t *testing.T) {
	grid := &model.TableGrid{Rows: []float64{800, 60}, Cols: []float64{50, 100, 150, 300}}

	raw := convertTable(2, headFragment(), []*model.TableGrid{grid})
	assert.Equal(t, []document.Column{{Left: 60, Right: 160}, {Left: 160, Right: 280}}, raw.Columns,
		"grid with another column count is ignored")
}

func TestConvertedFragmentsUnite(t *testing.T) {
	s := NewStitcher("姓名", "职务", 842)

	headGrid := &model.TableGrid{Rows: []float64{800, 60}, Cols: []float64{50, 150, 300}}
	tailGrid := &model.TableGrid{Rows: []float64{810, 480}, Cols: []float64{50.5, 150.5, 300.5}}
	head := convertTable(2, headFragment(), []*model.TableGrid{headGrid})
	tail := convertTable(3, tailFragment(), []*model.TableGrid{tailGrid})
	assert.True(t, s.United(head, tail), "ruled fragments with different text lengths")

	head = convertTable(2, headFragment(), nil)
	tail = convertTable(3, tailFragment(), nil)
	assert.Equal(t, head.Columns[0].Width(), tail.Columns[0].Width(),
		"inner column widths follow left text edges, not text length")
}

func TestPageInRange(t *testing.T) {
	require.NoError(t, pageInRange(1, 3))
	require.NoError(t, pageInRange(3, 3))

	for _, n := range []int{0, 4} {
		err := pageInRange(n, 3)
		require.Error(t, err)
		assert.True(t, errors.Is(err, document.ErrMalformedDocument))
		assert.Contains(t, err.Error(), "out of range")
	}
}

func TestTabulaExtractorMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf at all"), 0o600))

	_, err := NewTabulaExtractor().Extract(context.Background(), path, []int{1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, document.ErrMalformedDocument))
}
