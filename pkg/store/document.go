package store

import "time"

// DocumentMetadata describes the uploaded file a DocumentContext was extracted from.
type DocumentMetadata struct {
	Filename  string `json:"filename"`
	PageCount int    `json:"num_pages"`
	Size      int64  `json:"file_size"`
	Truncated bool   `json:"truncated"`
}

// DocumentContext is extracted document text plus its metadata.
// It is treated as a value: sessions replace it wholesale, never edit it.
type DocumentContext struct {
	Text     string           `json:"context"`
	Metadata DocumentMetadata `json:"metadata"`
}

// Equal reports whether two contexts carry the same text and metadata.
// Two nil contexts are equal.
func (d *DocumentContext) Equal(other *DocumentContext) bool {
	if d == nil || other == nil {
		return d == nil && other == nil
	}
	return d.Text == other.Text && d.Metadata == other.Metadata
}

// Clone returns an independent copy.
func (d *DocumentContext) Clone() *DocumentContext {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

// DocumentEntry is what the process-wide document store keeps per session id.
type DocumentEntry struct {
	SessionID  string          `json:"session_id"`
	Document   DocumentContext `json:"document"`
	InsertedAt time.Time       `json:"inserted_at"`
}
