package document

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"voice-coach-be/pkg/store"
)

const (
	MaxFileSize   int64 = 10 * 1024 * 1024
	MaxTextLength       = 50000

	TruncationMarker = "\n\n[Text truncated due to length...]"
)

var (
	ErrUnsupportedFormat  = errors.New("unsupported document format")
	ErrFileTooLarge       = errors.New("document exceeds maximum file size")
	ErrEmptyDocument      = errors.New("document contains no extractable text")
	ErrUnreadableDocument = errors.New("document could not be parsed")
)

// Extractor turns an uploaded file into a DocumentContext.
type Extractor interface {
	Extract(filename, contentType string, data []byte) (*store.DocumentContext, error)
}

var (
	blankLinesPattern = regexp.MustCompile(`\n\s*\n`)
	spacesPattern     = regexp.MustCompile(`[ \t]+`)
	pageFooterPattern = regexp.MustCompile(`(?i)page\s+\d+\s+of\s+\d+`)
	datePattern       = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
)

// TextExtractor accepts plain-text uploads, where form feeds separate pages.
// PDFs go to PDF when set and are rejected otherwise.
type TextExtractor struct {
	MaxFileSize   int64
	MaxTextLength int
	PDF           Extractor
}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{
		MaxFileSize:   MaxFileSize,
		MaxTextLength: MaxTextLength,
		PDF:           NewPDFExtractor(),
	}
}

func (e *TextExtractor) Extract(filename, contentType string, data []byte) (*store.DocumentContext, error) {
	if int64(len(data)) > e.MaxFileSize {
		return nil, fmt.Errorf("%s is %d bytes: %w", filename, len(data), ErrFileTooLarge)
	}
	if isPDF(filename, contentType, data) {
		if e.PDF == nil {
			return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
		}
		return e.PDF.Extract(filename, contentType, data)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%s is not valid UTF-8 text: %w", filename, ErrUnsupportedFormat)
	}

	raw := string(data)
	pages := strings.Count(raw, "\f") + 1

	text := CleanText(strings.ReplaceAll(raw, "\f", "\n\n"))
	if text == "" {
		return nil, fmt.Errorf("%s: %w", filename, ErrEmptyDocument)
	}

	text, truncated := Truncate(text, e.MaxTextLength)

	return &store.DocumentContext{
		Text: text,
		Metadata: store.DocumentMetadata{
			Filename:  filename,
			PageCount: pages,
			Size:      int64(len(data)),
			Truncated: truncated,
		},
	}, nil
}

// CleanText collapses whitespace and strips page footers and numeric dates.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = pageFooterPattern.ReplaceAllString(text, "")
	text = datePattern.ReplaceAllString(text, "")
	text = spacesPattern.ReplaceAllString(text, " ")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Truncate cuts text to limit runes and appends TruncationMarker.
func Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	runes := []rune(text)
	return string(runes[:limit]) + TruncationMarker, true
}

func isPDF(filename, contentType string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	if strings.HasPrefix(strings.ToLower(contentType), "application/pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
