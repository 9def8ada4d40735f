package document

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"voice-coach-be/internal/config"
	"voice-coach-be/pkg/store"
)

// ContextPath is where upload servers expose a session's extracted document.
const ContextPath = "/get-pdf-context/"

// Source is one fetch candidate. Lookup returns (nil, nil) when the candidate
// answered but holds no document for the session.
type Source interface {
	Name() string
	Lookup(ctx context.Context, sessionID string) (*store.DocumentContext, error)
}

// ContextResponse is the wire shape of GET /get-pdf-context/:room.
type ContextResponse struct {
	RoomID     string                 `json:"room_id,omitempty"`
	HasContext bool                   `json:"has_context"`
	Context    string                 `json:"context"`
	Metadata   store.DocumentMetadata `json:"metadata"`
}

// EntryReader is the read side of the process-wide document store.
type EntryReader interface {
	Get(sessionID string) (store.DocumentEntry, bool)
}

// LocalSource reads the in-process document store.
type LocalSource struct {
	reader EntryReader
}

func NewLocalSource(reader EntryReader) *LocalSource {
	return &LocalSource{reader: reader}
}

func (s *LocalSource) Name() string { return config.LocalEndpoint }

func (s *LocalSource) Lookup(ctx context.Context, sessionID string) (*store.DocumentContext, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, found := s.reader.Get(sessionID)
	if !found {
		return nil, nil
	}
	doc := entry.Document
	return &doc, nil
}

// HTTPSource asks an upload server for a session's document.
type HTTPSource struct {
	name    string
	baseURL string
	client  *http.Client
}

func NewHTTPSource(name, baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *HTTPSource) Name() string { return s.name }

func (s *HTTPSource) Lookup(ctx context.Context, sessionID string) (*store.DocumentContext, error) {
	endpoint := s.baseURL + ContextPath + url.PathEscape(sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", s.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", s.name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", s.name, resp.StatusCode)
	}

	var payload ContextResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response from %s: %w", s.name, err)
	}
	if !payload.HasContext || strings.TrimSpace(payload.Context) == "" {
		return nil, nil
	}

	return &store.DocumentContext{
		Text:     payload.Context,
		Metadata: payload.Metadata,
	}, nil
}

// CandidatesFromEndpoints builds fetch candidates in configured order.
func CandidatesFromEndpoints(endpoints []config.DocumentEndpoint, local EntryReader, client *http.Client) []Candidate {
	candidates := make([]Candidate, 0, len(endpoints))
	for _, ep := range endpoints {
		if ep.IsLocal() {
			if local == nil {
				continue
			}
			candidates = append(candidates, Candidate{Source: NewLocalSource(local), Timeout: ep.Timeout})
			continue
		}
		candidates = append(candidates, Candidate{
			Source:  NewHTTPSource(ep.Name, ep.URL, client),
			Timeout: ep.Timeout,
		})
	}
	return candidates
}
