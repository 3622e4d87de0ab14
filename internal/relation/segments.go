// Package relation turns board-member names and document text into labelled
// familial relations.
package relation

import (
	"regexp"
	"strings"
)

// tokenRe matches runs of word characters and apostrophes, Unicode-aware.
var tokenRe = regexp.MustCompile(`[\p{L}\p{M}\p{N}_']+`)

// MatchSegments returns every distinct token, across all pages, that contains
// at least one of names as a substring. Segments are returned in first
// occurrence order. Empty names are ignored.
func MatchSegments(pages []string, names []string) []string {
	var needles []string
	for _, n := range names {
		if n != "" {
			needles = append(needles, n)
		}
	}
	if len(needles) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var segments []string
	for _, page := range pages {
		for _, tok := range tokenRe.FindAllString(page, -1) {
			if seen[tok] || !containsAny(tok, needles) {
				continue
			}
			seen[tok] = true
			segments = append(segments, tok)
		}
	}
	return segments
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
