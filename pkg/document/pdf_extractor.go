package document

import (
	"bytes"
	"fmt"
	"strings"

	"voice-coach-be/pkg/store"

	"github.com/ledongthuc/pdf"
)

// PDFExtractor pulls the text layer out of PDF uploads, page by page.
// Pages that fail to decode are skipped; scanned pages yield no text.
type PDFExtractor struct {
	MaxFileSize   int64
	MaxTextLength int
}

func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{
		MaxFileSize:   MaxFileSize,
		MaxTextLength: MaxTextLength,
	}
}

func (e *PDFExtractor) Extract(filename, contentType string, data []byte) (*store.DocumentContext, error) {
	if int64(len(data)) > e.MaxFileSize {
		return nil, fmt.Errorf("%s is %d bytes: %w", filename, len(data), ErrFileTooLarge)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", filename, err, ErrUnreadableDocument)
	}

	pages := reader.NumPage()

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		text, ok := pageText(reader.Page(i))
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "\n--- Page %d ---\n%s\n", i, text)
	}

	text := CleanText(sb.String())
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

func pageText(page pdf.Page) (text string, ok bool) {
	if page.V.IsNull() {
		return "", false
	}
	// The decoder panics on some malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			text, ok = "", false
		}
	}()

	fonts := make(map[string]*pdf.Font)
	for _, name := range page.Fonts() {
		font := page.Font(name)
		fonts[name] = &font
	}

	text, err := page.GetPlainText(fonts)
	if err != nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}
