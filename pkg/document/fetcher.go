package document

import (
	"context"
	"time"

	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultCandidateTimeout = 2 * time.Second

// Candidate pairs a source with its own bounded timeout.
type Candidate struct {
	Source  Source
	Timeout time.Duration
}

// Fetcher resolves a session id to the best available document by trying
// candidates in priority order. It never fails: every problem reduces to
// "no context" plus a log line.
type Fetcher struct {
	candidates []Candidate
	logger     logger.ILogger
	tracer     trace.Tracer
}

func NewFetcher(log logger.ILogger, candidates ...Candidate) *Fetcher {
	for i := range candidates {
		if candidates[i].Timeout <= 0 {
			candidates[i].Timeout = DefaultCandidateTimeout
		}
	}
	return &Fetcher{
		candidates: candidates,
		logger:     log,
		tracer:     otel.Tracer("voice-coach-be/document"),
	}
}

// Fetch returns the first document any candidate reports, or nil.
// It has no side effects and may be called repeatedly.
func (f *Fetcher) Fetch(ctx context.Context, sessionID string) *store.DocumentContext {
	ctx, span := f.tracer.Start(ctx, "document.Fetch", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	reasons := make(map[string]interface{}, len(f.candidates))

	for _, c := range f.candidates {
		if ctx.Err() != nil {
			reasons["context"] = ctx.Err().Error()
			break
		}

		doc, err := f.try(ctx, c, sessionID)
		if err != nil {
			reasons[c.Source.Name()] = err.Error()
			continue
		}
		if doc == nil {
			reasons[c.Source.Name()] = "no context"
			continue
		}

		span.SetAttributes(attribute.String("document.source", c.Source.Name()), attribute.Int("document.length", len(doc.Text)))
		f.logger.Info("DocumentFetcher", "Document context found", map[string]interface{}{
			"session_id": sessionID,
			"source":     c.Source.Name(),
			"filename":   doc.Metadata.Filename,
			"length":     len(doc.Text),
		})
		return doc
	}

	span.SetAttributes(attribute.Bool("document.found", false))
	f.logger.Debug("DocumentFetcher", "No document context available", map[string]interface{}{
		"session_id": sessionID,
		"reasons":    reasons,
	})
	return nil
}

func (f *Fetcher) try(ctx context.Context, c Candidate, sessionID string) (*store.DocumentContext, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	return c.Source.Lookup(ctx, sessionID)
}
