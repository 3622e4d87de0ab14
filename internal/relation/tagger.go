package relation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/boardkin/internal/config"
	"github.com/dgallion1/boardkin/internal/document"
)

// Tagger labels person pairs with a familial relation using a keyword
// gazetteer.
type Tagger struct {
	Gazetteer   config.Gazetteer
	Placeholder string
}

// Tag emits one triplet per segment that has a duplet and whose text, with
// both names redacted, contains a gazetteer keyword. The longest keyword wins;
// on equal length the first in gazetteer order is kept.
func (t Tagger) Tag(segments []document.Segment) []document.FamilialTriplet {
	var triplets []document.FamilialTriplet
	for _, seg := range segments {
		if seg.Duplet == nil {
			continue
		}
		if tr, ok := t.tagOne(*seg.Duplet, seg.Text); ok {
			triplets = append(triplets, tr)
		}
	}
	return triplets
}

// TagParallel is Tag over two aligned lists. Lists of different lengths are
// rejected with document.ErrAlignment.
func (t Tagger) TagParallel(duplets []*document.PersonDuplet, texts []string) ([]document.FamilialTriplet, error) {
	if len(duplets) != len(texts) {
		return nil, fmt.Errorf("tag relations: %d duplets for %d texts: %w",
			len(duplets), len(texts), document.ErrAlignment)
	}
	segments := make([]document.Segment, len(texts))
	for i := range texts {
		segments[i] = document.Segment{Text: texts[i], Duplet: duplets[i]}
	}
	return t.Tag(segments), nil
}

func (t Tagger) tagOne(d document.PersonDuplet, text string) (document.FamilialTriplet, bool) {
	working := text
	for _, name := range []string{d.Person1, d.Person2} {
		if name != "" {
			working = strings.ReplaceAll(working, name, t.Placeholder)
		}
	}

	var label, keyword string
	for _, entry := range t.Gazetteer {
		for _, kw := range entry.Keywords {
			if kw == "" || !strings.Contains(working, kw) {
				continue
			}
			if utf8.RuneCountInString(kw) > utf8.RuneCountInString(keyword) {
				label, keyword = entry.Label, kw
			}
		}
	}
	if keyword == "" || label == "" {
		return document.FamilialTriplet{}, false
	}
	return document.FamilialTriplet{
		Person1: d.Person1,
		Person2: d.Person2,
		Label:   label,
		Keyword: keyword,
		Text:    working,
	}, true
}
