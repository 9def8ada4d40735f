package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextExtractor(t *testing.T) {
	e := NewTextExtractor()

	t.Run("counts pages and cleans", func(t *testing.T) {
		data := []byte("Jane Doe   Engineer\n\n\n\nPage 1 of 2\fSkills: Go\nUpdated 12/05/2024\n")
		doc, err := e.Extract("cv.txt", "text/plain", data)
		require.NoError(t, err)
		assert.Equal(t, 2, doc.Metadata.PageCount)
		assert.Equal(t, "cv.txt", doc.Metadata.Filename)
		assert.EqualValues(t, len(data), doc.Metadata.Size)
		assert.False(t, doc.Metadata.Truncated)
		assert.NotContains(t, doc.Text, "Page 1 of 2")
		assert.NotContains(t, doc.Text, "12/05/2024")
		assert.Contains(t, doc.Text, "Jane Doe Engineer")
		assert.NotContains(t, doc.Text, "\n\n\n")
	})

	t.Run("truncates long text", func(t *testing.T) {
		small := &TextExtractor{MaxFileSize: MaxFileSize, MaxTextLength: 10}
		doc, err := small.Extract("long.txt", "", []byte(strings.Repeat("a", 25)))
		require.NoError(t, err)
		assert.True(t, doc.Metadata.Truncated)
		assert.Equal(t, strings.Repeat("a", 10)+TruncationMarker, doc.Text)
	})

	t.Run("rejects oversized upload", func(t *testing.T) {
		small := &TextExtractor{MaxFileSize: 4, MaxTextLength: MaxTextLength}
		_, err := small.Extract("big.txt", "", []byte("12345"))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})

	t.Run("rejects pdf without a pdf extractor", func(t *testing.T) {
		textOnly := &TextExtractor{MaxFileSize: MaxFileSize, MaxTextLength: MaxTextLength}
		_, err := textOnly.Extract("cv.bin", "", []byte("%PDF-1.7 ..."))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)

		_, err = textOnly.Extract("cv.PDF", "", []byte("text"))
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})

	t.Run("hands pdf to the pdf extractor", func(t *testing.T) {
		doc, err := e.Extract("cv.pdf", "application/pdf", buildPDF("Jane Doe Product Manager"))
		require.NoError(t, err)
		assert.Contains(t, doc.Text, "Jane Doe Product Manager")
		assert.Equal(t, 1, doc.Metadata.PageCount)
	})

	t.Run("rejects blank document", func(t *testing.T) {
		_, err := e.Extract("blank.txt", "", []byte(" \n\f \n"))
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})
}
