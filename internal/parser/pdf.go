package parser

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/dgallion1/boardkin/internal/config"
	"github.com/dgallion1/boardkin/internal/document"
	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It tries the Go library first,
// then falls back to pdftotext if available.
type PDFParser struct {
	FallbackPdftotext bool
	Normalization     config.Normalization
}

func (p *PDFParser) Parse(path string) (*document.PageIndex, error) {
	pages, err := extractPDFPages(path)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(path)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w: %w", document.ErrMalformedDocument, err)
	}

	for i := range pages {
		pages[i] = NormalizePage(pages[i], p.Normalization)
	}
	return document.NewPageIndex(pages), nil
}

// extractPDFPages returns one entry per page; unreadable pages are kept as
// empty strings so page numbers stay aligned with the table extractor.
func extractPDFPages(path string) (pages []string, err error) {
	// ledongthuc/pdf panics on some malformed xref tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	numPages := reader.NumPage()
	pages = make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(path string) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return splitPages(string(out)), nil
}

// splitPages splits pdftotext output on form feeds. pdftotext terminates
// every page with one, so the trailing empty element is dropped.
func splitPages(text string) []string {
	pages := strings.Split(text, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
