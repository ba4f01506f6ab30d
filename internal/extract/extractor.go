// Package extract implements interfaces.TextExtractor (spec.md §4.2 step c):
// pulling plain text out of an uploaded file. Full-text rendering of PDFs is
// an explicit Non-goal, so non-text formats get a best-effort byte-level
// extraction rather than a dedicated parser per format.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode"
)

var nativeTextExtensions = map[string]bool{
	"txt": true, "md": true, "markdown": true, "json": true,
	"xml": true, "csv": true, "log": true, "yaml": true, "yml": true,
}

var nativeTextContentTypes = map[string]bool{
	"text/plain": true, "text/markdown": true, "application/json": true,
	"text/xml": true, "application/xml": true, "text/csv": true, "text/yaml": true,
}

// Extractor is the default interfaces.TextExtractor: native-text formats are
// read verbatim; everything else gets a best-effort plain-text pass that
// strips binary noise so downstream chunking/embedding still has something
// to work with.
type Extractor struct{}

// New builds an Extractor.
func New() *Extractor { return &Extractor{} }

func (e *Extractor) Extract(ctx context.Context, fileName, contentType string, body io.Reader) (string, bool, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", false, fmt.Errorf("extract: read body: %w", err)
	}

	if isNativeText(fileName, contentType) {
		return string(raw), true, nil
	}

	return bestEffortPlainText(raw), false, nil
}

func isNativeText(fileName, contentType string) bool {
	if nativeTextContentTypes[strings.ToLower(contentType)] {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(extOf(fileName)), ".")
	return nativeTextExtensions[ext]
}

func extOf(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return ""
	}
	return fileName[idx:]
}

// bestEffortPlainText drops non-printable/control bytes and collapses
// runs of whitespace, so binary formats (pdf, docx, doc) still yield
// searchable text fragments (e.g. embedded strings) without a dedicated
// per-format parser.
func bestEffortPlainText(raw []byte) string {
	var b strings.Builder
	lastWasSpace := false
	for _, r := range bytes.Runes(raw) {
		if r == unicode.ReplacementChar {
			continue
		}
		printable := unicode.IsPrint(r) || r == '\n'
		if !printable {
			if !lastWasSpace {
				b.WriteByte(' ')
				lastWasSpace = true
			}
			continue
		}
		if unicode.IsSpace(r) {
			if lastWasSpace {
				continue
			}
			lastWasSpace = true
			b.WriteByte(' ')
			continue
		}
		lastWasSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
