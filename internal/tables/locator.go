package tables

import (
	"strings"

	"github.com/dgallion1/boardkin/internal/document"
)

// CandidatePages returns the 1-based numbers of pages whose text looks like it
// holds a name/position table: the name header starts a line and the position
// header stands alone between spaces.
func CandidatePages(idx *document.PageIndex, nameHeader, positionHeader string) []int {
	nameToken := "\n" + nameHeader
	positionToken := " " + positionHeader + " "

	var pages []int
	for _, page := range idx.Pages() {
		if strings.Contains(page.Text, nameToken) && strings.Contains(page.Text, positionToken) {
			pages = append(pages, page.Index+1)
		}
	}
	return pages
}
