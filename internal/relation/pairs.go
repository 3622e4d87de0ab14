package relation

import (
	"context"
	"fmt"
	"strings"

	"github.com/dgallion1/boardkin/internal/document"
	"github.com/dgallion1/boardkin/internal/ner"
)

// PairExtractor finds the two persons mentioned in each segment.
type PairExtractor struct {
	Recognizer  ner.Recognizer
	PersonLabel string
}

// Extract runs NER over all texts in one batch. A segment gets a duplet only
// when exactly two person entities are found; otherwise its Duplet is nil.
func (p PairExtractor) Extract(ctx context.Context, texts []string) ([]document.Segment, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	entities, err := p.Recognizer.Recognize(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("recognize persons: %w", err)
	}
	if len(entities) != len(texts) {
		return nil, fmt.Errorf("recognize persons: %d results for %d texts: %w",
			len(entities), len(texts), document.ErrAlignment)
	}

	segments := make([]document.Segment, len(texts))
	for i, text := range texts {
		segments[i] = document.Segment{Text: text, Duplet: p.duplet(entities[i])}
	}
	return segments, nil
}

func (p PairExtractor) duplet(ents []ner.Entity) *document.PersonDuplet {
	var persons []string
	for _, e := range ents {
		if strings.Contains(e.Label, p.PersonLabel) {
			persons = append(persons, e.Text)
		}
	}
	if len(persons) != 2 {
		return nil
	}
	return &document.PersonDuplet{Person1: persons[0], Person2: persons[1]}
}

// Duplets returns the number of segments carrying a person pair.
func Duplets(segments []document.Segment) int {
	n := 0
	for _, s := range segments {
		if s.Duplet != nil {
			n++
		}
	}
	return n
}
