// Package board selects board-level members from reconstructed staff tables.
package board

import (
	"regexp"
	"strings"

	"github.com/dgallion1/boardkin/internal/document"
)

// Filter projects tables to their name and position columns and keeps rows
// whose position matches Positions.
type Filter struct {
	NameColumn     string
	PositionColumn string
	Positions      *regexp.Regexp
}

// Members returns the qualifying rows of all tables, in table order then row
// order. Tables missing either column are skipped. Names are not deduplicated:
// one person may be listed in several tables.
func (f Filter) Members(tables []document.LogicalTable) []document.BoardMember {
	var members []document.BoardMember
	for _, t := range tables {
		if !t.HasColumn(f.NameColumn) || !t.HasColumn(f.PositionColumn) {
			continue
		}
		for _, row := range t.Rows {
			position := strings.TrimSpace(row[f.PositionColumn])
			if !f.Positions.MatchString(position) {
				continue
			}
			members = append(members, document.BoardMember{
				Name:     strings.TrimSpace(row[f.NameColumn]),
				Position: position,
			})
		}
	}
	return members
}

// UniqueNames returns the distinct non-empty member names in first-seen order.
func UniqueNames(members []document.BoardMember) []string {
	seen := make(map[string]bool, len(members))
	var names []string
	for _, m := range members {
		if m.Name == "" || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		names = append(names, m.Name)
	}
	return names
}

// Records renders members as maps keyed by the canonical output column names.
func Records(members []document.BoardMember, nameKey, positionKey string) []map[string]string {
	out := make([]map[string]string, len(members))
	for i, m := range members {
		out[i] = map[string]string{nameKey: m.Name, positionKey: m.Position}
	}
	return out
}
