package memory

import (
	"testing"
	"time"

	"voice-coach-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentRepositoryLastWriteWins(t *testing.T) {
	repo := NewDocumentRepository()
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	_, found := repo.Get("room-1")
	assert.False(t, found)

	repo.Put("room-1", store.DocumentContext{Text: "first", Metadata: store.DocumentMetadata{Filename: "a.txt"}})
	clock = clock.Add(time.Minute)
	repo.Put("room-1", store.DocumentContext{Text: "second", Metadata: store.DocumentMetadata{Filename: "b.txt"}})

	entry, found := repo.Get("room-1")
	require.True(t, found)
	assert.Equal(t, "second", entry.Document.Text)
	assert.Equal(t, "b.txt", entry.Document.Metadata.Filename)
	assert.Equal(t, clock, entry.InsertedAt)
	assert.Equal(t, 1, repo.Count())
}

func TestDocumentRepositoryKeysAreIsolated(t *testing.T) {
	repo := NewDocumentRepository()
	repo.Put("room-1", store.DocumentContext{Text: "one"})
	repo.Put("room-2", store.DocumentContext{Text: "two"})

	repo.Delete("room-1")

	_, found := repo.Get("room-1")
	assert.False(t, found)
	entry, found := repo.Get("room-2")
	require.True(t, found)
	assert.Equal(t, "two", entry.Document.Text)
}
