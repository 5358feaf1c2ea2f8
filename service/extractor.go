package service

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	pdf "github.com/ledongthuc/pdf"
)

// minReadableTextLength is the minimum number of extracted characters for a
// PDF to count as readable. Text-free scanned documents fall below it.
const minReadableTextLength = 100

// Extractor converts uploaded PDF payloads into plain text
type Extractor struct {
	minTextLength int
}

// NewExtractor creates a new document extractor
func NewExtractor() *Extractor {
	return &Extractor{minTextLength: minReadableTextLength}
}

// ExtractText extracts plain text from a PDF payload. Returns
// ErrUnreadableDocument when the document cannot be parsed or yields less
// text than the readable threshold.
func (e *Extractor) ExtractText(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	r, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	rs, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	var buf bytes.Buffer
	if _, err = io.Copy(&buf, rs); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableDocument, err)
	}

	text := normalizeWhitespace(buf.String())
	if e.tooShort(text) {
		return "", fmt.Errorf("%w: extracted %d characters, need at least %d",
			ErrUnreadableDocument, utf8.RuneCountInString(text), e.minTextLength)
	}

	return text, nil
}

// tooShort measures the extracted text in runes, not bytes, so documents in
// multibyte scripts are held to the same threshold.
func (e *Extractor) tooShort(text string) bool {
	return utf8.RuneCountInString(text) < e.minTextLength
}

var (
	spaceRuns   = regexp.MustCompile(`[ \t\r\f\v]+`)
	newlineRuns = regexp.MustCompile(`\n+`)
)

// normalizeWhitespace collapses whitespace runs while preserving line
// structure
func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = newlineRuns.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
