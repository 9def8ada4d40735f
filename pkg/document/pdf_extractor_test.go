package document

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal PDF with one Helvetica text line per page.
func buildPDF(pages ...string) []byte {
	var objects []string

	// 1 catalog, 2 page tree, 3 font, then a page and a content stream per page
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, text := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPDFExtractor(t *testing.T) {
	e := NewPDFExtractor()

	t.Run("extracts every page", func(t *testing.T) {
		data := buildPDF("Experience: Go services", "Education: BSc Computer Science")
		doc, err := e.Extract("resume.pdf", "application/pdf", data)
		require.NoError(t, err)

		assert.Equal(t, 2, doc.Metadata.PageCount)
		assert.Equal(t, "resume.pdf", doc.Metadata.Filename)
		assert.EqualValues(t, len(data), doc.Metadata.Size)
		assert.False(t, doc.Metadata.Truncated)
		assert.Contains(t, doc.Text, "--- Page 1 ---")
		assert.Contains(t, doc.Text, "Experience: Go services")
		assert.Contains(t, doc.Text, "Education: BSc Computer Science")
		assert.Less(t, strings.Index(doc.Text, "Experience"), strings.Index(doc.Text, "Education"))
	})

	t.Run("cleans footers and truncates", func(t *testing.T) {
		small := &PDFExtractor{MaxFileSize: MaxFileSize, MaxTextLength: 20}
		doc, err := small.Extract("long.pdf", "", buildPDF("Page 1 of 1 "+strings.Repeat("x", 40)))
		require.NoError(t, err)
		assert.NotContains(t, doc.Text, "Page 1 of 1")
		assert.True(t, doc.Metadata.Truncated)
		assert.True(t, strings.HasSuffix(doc.Text, TruncationMarker))
	})

	t.Run("page without text is empty", func(t *testing.T) {
		_, err := e.Extract("scan.pdf", "", buildPDF(""))
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("corrupt file is unreadable", func(t *testing.T) {
		_, err := e.Extract("broken.pdf", "", []byte("%PDF-1.7 not really"))
		assert.ErrorIs(t, err, ErrUnreadableDocument)
	})

	t.Run("oversized file", func(t *testing.T) {
		small := &PDFExtractor{MaxFileSize: 10, MaxTextLength: MaxTextLength}
		_, err := small.Extract("big.pdf", "", buildPDF("hello"))
		assert.ErrorIs(t, err, ErrFileTooLarge)
	})
}
