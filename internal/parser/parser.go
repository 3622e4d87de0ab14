package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dgallion1/boardkin/internal/config"
	"github.com/dgallion1/boardkin/internal/document"
)

// Parser splits a document on disk into per-page plain text.
type Parser interface {
	Parse(path string) (*document.PageIndex, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".pdf": true,
}

// Options configures the parsers returned by ForFile.
type Options struct {
	FallbackPdftotext bool
	Normalization     config.Normalization
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.FallbackPdftotext, Normalization: opts.Normalization}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}
