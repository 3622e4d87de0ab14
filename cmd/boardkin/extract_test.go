package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/boardkin/internal/document"
	"github.com/dgallion1/boardkin/internal/pipeline"
)

type fileRunner struct {
	inFlight, peak atomic.Int32
}

func (f *fileRunner) RunWithProgress(_ context.Context, path string, onStage func(string)) (*pipeline.Result, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	if path == "broken.pdf" {
		return nil, errors.New("parsing: malformed document")
	}
	return &pipeline.Result{
		Triplets:     []document.FamilialTriplet{{Person1: "张三", Person2: "李四", Label: "sibling", Keyword: "兄弟", Text: path}},
		BoardMembers: []map[string]string{{"name": "张三", "position": "董事"}},
		Stats:        pipeline.Stats{Pages: 1, Triplets: 1},
	}, nil
}

func TestRunDocumentsKeepsArgumentOrder(t *testing.T) {
	runner := &fileRunner{}
	files := []string{"a.pdf", "broken.pdf", "c.pdf", "d.pdf"}

	results := runDocuments(context.Background(), runner, files, 2, nil)
	require.Len(t, results, 4)
	for i, r := range results {
		assert.Equal(t, files[i], r.File)
	}
	assert.LessOrEqual(t, runner.peak.Load(), int32(2))

	assert.Equal(t, "parsing: malformed document", results[1].Error)
	assert.Empty(t, results[1].Triplets)
	assert.NotNil(t, results[1].Triplets)
	assert.Nil(t, results[1].Stats)

	assert.Equal(t, "c.pdf", results[2].Triplets[0].Text)
	assert.Equal(t, 1, results[2].Stats.Pages)
}

func TestWriteResultsJSON(t *testing.T) {
	results := runDocuments(context.Background(), &fileRunner{}, []string{"a.pdf", "broken.pdf"}, 1, nil)

	var buf bytes.Buffer
	require.NoError(t, writeResults(&buf, results))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "a.pdf", decoded[0]["file"])
	assert.NotContains(t, decoded[0], "error")
	assert.Contains(t, decoded[0], "stats")
	assert.Equal(t, []any{}, decoded[1]["triplets"])
	assert.NotContains(t, decoded[1], "stats")
	assert.Contains(t, buf.String(), "张三", "non-ASCII output stays readable")
}

func TestSummarize(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	err := summarize(&buf, []docResult{
		{File: "a.pdf", Triplets: make([]document.FamilialTriplet, 2)},
		{File: "b.pdf"},
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "2 documents, 2 relations")

	buf.Reset()
	err = summarize(&buf, []docResult{{File: "a.pdf"}, {File: "x.pdf", Error: "boom"}})
	require.Error(t, err)
	assert.Equal(t, "1 of 2 documents failed", err.Error())
	assert.Contains(t, buf.String(), "x.pdf: boom")
}
