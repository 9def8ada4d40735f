package service

import (
	"context"
	"fmt"
	"strings"

	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/pkg/document"
	"voice-coach-be/pkg/signal"
	"voice-coach-be/pkg/store"
)

// DocumentStore is the process-wide document context store.
type DocumentStore interface {
	Put(sessionID string, doc store.DocumentContext) store.DocumentEntry
	Get(sessionID string) (store.DocumentEntry, bool)
	Delete(sessionID string)
	Count() int
}

type IDocumentService interface {
	// Upload extracts, stores (last write wins) and signals the session.
	Upload(ctx context.Context, roomID, filename, contentType string, data []byte) (*store.DocumentEntry, error)
	GetContext(ctx context.Context, roomID string) (*store.DocumentEntry, bool)
	Clear(ctx context.Context, roomID string) bool
	StoredCount() int
}

type documentService struct {
	extractor document.Extractor
	store     DocumentStore
	publisher signal.Publisher
	logger    logger.ILogger
}

func NewDocumentService(extractor document.Extractor, docStore DocumentStore, publisher signal.Publisher, log logger.ILogger) IDocumentService {
	return &documentService{
		extractor: extractor,
		store:     docStore,
		publisher: publisher,
		logger:    log,
	}
}

func (s *documentService) Upload(ctx context.Context, roomID, filename, contentType string, data []byte) (*store.DocumentEntry, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" {
		return nil, fmt.Errorf("upload: empty room id: %w", ErrInvalidSession)
	}

	// 1. Extract
	doc, err := s.extractor.Extract(filename, contentType, data)
	if err != nil {
		s.logger.Warn("DocumentService", "Extraction failed", map[string]interface{}{
			"room_id":  roomID,
			"filename": filename,
			"error":    err.Error(),
		})
		return nil, err
	}

	// 2. Store
	entry := s.store.Put(roomID, *doc)
	s.logger.Info("DocumentService", "Document stored", map[string]interface{}{
		"room_id":   roomID,
		"filename":  doc.Metadata.Filename,
		"pages":     doc.Metadata.PageCount,
		"length":    len(doc.Text),
		"truncated": doc.Metadata.Truncated,
	})

	// 3. Signal; the stored context is still served if this fails
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, roomID); err != nil {
			s.logger.Error("DocumentService", "Failed to signal document update", map[string]interface{}{
				"room_id": roomID,
				"error":   err,
			})
		}
	}

	return &entry, nil
}

func (s *documentService) GetContext(ctx context.Context, roomID string) (*store.DocumentEntry, bool) {
	entry, ok := s.store.Get(roomID)
	if !ok {
		return nil, false
	}
	return &entry, true
}

func (s *documentService) Clear(ctx context.Context, roomID string) bool {
	if _, ok := s.store.Get(roomID); !ok {
		return false
	}
	s.store.Delete(roomID)
	s.logger.Info("DocumentService", "Document cleared", map[string]interface{}{"room_id": roomID})
	return true
}

func (s *documentService) StoredCount() int {
	return s.store.Count()
}
