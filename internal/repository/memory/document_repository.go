package memory

import (
	"time"

	"voice-coach-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// DocumentRepository is the process-wide document context store, keyed by session id.
// Entries never expire; a newer entry for the same key replaces the old one.
type DocumentRepository struct {
	cache *cache.Cache
	now   func() time.Time
}

func NewDocumentRepository() *DocumentRepository {
	return &DocumentRepository{
		cache: cache.New(cache.NoExpiration, 0),
		now:   time.Now,
	}
}

// Put stores doc for sessionID, superseding any earlier upload.
func (r *DocumentRepository) Put(sessionID string, doc store.DocumentContext) store.DocumentEntry {
	entry := store.DocumentEntry{
		SessionID:  sessionID,
		Document:   doc,
		InsertedAt: r.now(),
	}
	r.cache.Set(sessionID, entry, cache.NoExpiration)
	return entry
}

func (r *DocumentRepository) Get(sessionID string) (store.DocumentEntry, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(store.DocumentEntry), true
	}
	return store.DocumentEntry{}, false
}

func (r *DocumentRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *DocumentRepository) Count() int {
	return r.cache.ItemCount()
}
