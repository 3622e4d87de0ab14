package parser

import (
	"strings"
	"unicode"

	"github.com/dgallion1/boardkin/internal/config"
	"golang.org/x/text/unicode/norm"
)

// NormalizePage applies the configured unicode normal form and drops trailing
// whitespace. Leading line breaks are kept: the table locator matches a header
// preceded by a newline.
func NormalizePage(text string, form config.Normalization) string {
	switch form {
	case config.NormalizeNFC:
		text = norm.NFC.String(text)
	case config.NormalizeNFKC:
		text = norm.NFKC.String(text)
	}
	return strings.TrimRightFunc(text, unicode.IsSpace)
}
