package ner

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"
)

// DictionaryRecognizer tags occurrences of a fixed set of names. At each
// position the longest matching name wins and scanning resumes after it.
type DictionaryRecognizer struct {
	names []string
	label string
}

func NewDictionaryRecognizer(names []string, label string) *DictionaryRecognizer {
	seen := make(map[string]bool, len(names))
	var uniq []string
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		uniq = append(uniq, n)
	}
	sort.SliceStable(uniq, func(i, j int) bool { return len(uniq[i]) > len(uniq[j]) })
	return &DictionaryRecognizer{names: uniq, label: label}
}

func (d *DictionaryRecognizer) Recognize(ctx context.Context, texts []string) ([][]Entity, error) {
	out := make([][]Entity, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = d.scan(text)
	}
	return out, nil
}

func (d *DictionaryRecognizer) scan(text string) []Entity {
	ents := []Entity{}
	for pos := 0; pos < len(text); {
		matched := ""
		for _, n := range d.names {
			if strings.HasPrefix(text[pos:], n) {
				matched = n
				break
			}
		}
		if matched != "" {
			ents = append(ents, Entity{Text: matched, Label: d.label})
			pos += len(matched)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[pos:])
		pos += size
	}
	return ents
}
