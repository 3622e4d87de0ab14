package tables

import (
	"context"
	"testing"

	"github.com/dgallion1/boardkin/internal/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExtractor struct {
	byPage map[int][]document.RawTable
	calls  [][]int
}

func (e *countingExtractor) Extract(_ context.Context, _ string, pages []int) ([]document.RawTable, error) {
	e.calls = append(e.calls, append([]int(nil), pages...))
	var out []document.RawTable
	for _, p := range pages {
		out = append(out, e.byPage[p]...)
	}
	return out, nil
}

func TestPageCache_FetchesEachPageOnce(t *testing.T) {
	ext := &countingExtractor{byPage: map[int][]document.RawTable{
		2: {{Page: 2, Rows: [][]string{{"a"}}}, {Page: 2, Rows: [][]string{{"b"}}}},
		5: {{Page: 5, Rows: [][]string{{"c"}}}},
	}}
	cache := NewPageCache(ext, "doc.pdf")
	ctx := context.Background()

	got, err := cache.Extract(ctx, []int{2, 5})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Rows[0][0])
	assert.Equal(t, "c", got[2].Rows[0][0])

	again, err := cache.Lookup(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, again, 1)

	// Page 3 has no tables; the empty result is cached as well.
	empty, err := cache.Lookup(ctx, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
	_, err = cache.Lookup(ctx, 3)
	require.NoError(t, err)

	assert.Equal(t, [][]int{{2, 5}, {3}}, ext.calls)
}
