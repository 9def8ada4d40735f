package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"voice-coach-be/internal/entity"
	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/pkg/ai/prompt"
	"voice-coach-be/pkg/ai/router"
	"voice-coach-be/pkg/conversation"
	"voice-coach-be/pkg/store"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("invalid session")
)

// DocumentFetcher resolves a session id to its current document, or nil.
type DocumentFetcher interface {
	Fetch(ctx context.Context, sessionID string) *store.DocumentContext
}

type ISessionOrchestrator interface {
	conversation.SessionEventSink

	Open(sessionID string, channel conversation.Channel) error
	BindProfile(sessionID string, profile *entity.CareerProfile) error
	Profile(sessionID string) (*entity.CareerProfile, error)
	RecommendSkills(sessionID string, skills []string) error
	Snapshot(sessionID string) (store.Snapshot, error)
	HasSession(sessionID string) bool
	ActiveSessions() int
	Shutdown()
}

type OrchestratorOptions struct {
	WelcomeAttempts   int
	WelcomeRetryDelay time.Duration
}

type sessionHandle struct {
	// mu guards state and serializes every emission into channel.
	mu      sync.Mutex
	state   *store.Session
	channel conversation.Channel

	// refreshMu keeps refreshes for one session in arrival order.
	refreshMu sync.Mutex

	cancelPoll context.CancelFunc
	pollDone   chan struct{}
}

type sessionOrchestrator struct {
	mu       sync.RWMutex
	sessions map[string]*sessionHandle

	fetcher  DocumentFetcher
	renderer prompt.Renderer
	router   *router.Router
	poller   *ContextPoller
	options  OrchestratorOptions
	logger   logger.ILogger
}

func NewSessionOrchestrator(
	fetcher DocumentFetcher,
	renderer prompt.Renderer,
	msgRouter *router.Router,
	poller *ContextPoller,
	options OrchestratorOptions,
	log logger.ILogger,
) ISessionOrchestrator {
	if options.WelcomeAttempts <= 0 {
		options.WelcomeAttempts = 1
	}
	return &sessionOrchestrator{
		sessions: make(map[string]*sessionHandle),
		fetcher:  fetcher,
		renderer: renderer,
		router:   msgRouter,
		poller:   poller,
		options:  options,
		logger:   log,
	}
}

// Open registers a session and starts its poller. Opening an id that is
// already live rebinds the channel and keeps the state, so a reconnecting
// agent is not welcomed twice.
func (o *sessionOrchestrator) Open(sessionID string, channel conversation.Channel) error {
	if sessionID == "" {
		return fmt.Errorf("open: empty session id: %w", ErrInvalidSession)
	}
	if channel == nil {
		return fmt.Errorf("open %s: no conversation channel: %w", sessionID, ErrInvalidSession)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if h, exists := o.sessions[sessionID]; exists {
		h.mu.Lock()
		h.channel = channel
		h.mu.Unlock()
		o.logger.Info("SessionOrchestrator", "Session channel rebound", map[string]interface{}{"session_id": sessionID})
		return nil
	}

	h := &sessionHandle{
		state:   store.NewSession(sessionID),
		channel: channel,
	}

	if o.poller != nil {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelPoll = cancel
		h.pollDone = make(chan struct{})
		go func() {
			defer close(h.pollDone)
			o.poller.Run(ctx, sessionID, func(ctx context.Context) error {
				return o.OnDocumentRefreshSignal(ctx, sessionID)
			})
		}()
	}

	o.sessions[sessionID] = h
	o.logger.Info("SessionOrchestrator", "Session opened", map[string]interface{}{
		"session_id": sessionID,
		"active":     len(o.sessions),
	})
	return nil
}

func (o *sessionOrchestrator) lookup(sessionID string) (*sessionHandle, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	h, ok := o.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", sessionID, ErrSessionNotFound)
	}
	return h, nil
}

// OnSessionStarted sends the one-time welcome. Repeat calls after a
// successful welcome do nothing.
func (o *sessionOrchestrator) OnSessionStarted(ctx context.Context, sessionID string) error {
	h, err := o.lookup(sessionID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state.WelcomeSent {
		o.logger.Debug("SessionOrchestrator", "Welcome already sent, ignoring duplicate start", map[string]interface{}{"session_id": sessionID})
		return nil
	}

	// 1. Best-effort fetch; a miss keeps whatever a refresh already cached
	if doc := o.fetcher.Fetch(ctx, sessionID); doc != nil {
		h.state.SetDocument(doc)
	}
	doc := h.state.Document()

	// 2. Whole sequence retried; WelcomeSent only after all steps succeed
	var lastErr error
	for attempt := 1; attempt <= o.options.WelcomeAttempts; attempt++ {
		lastErr = o.sendWelcome(ctx, h, doc)
		if lastErr == nil {
			h.state.MarkWelcomed()
			o.logger.Info("SessionOrchestrator", "Welcome sent", map[string]interface{}{
				"session_id":   sessionID,
				"has_document": doc != nil,
				"attempt":      attempt,
			})
			return nil
		}

		o.logger.Warn("SessionOrchestrator", "Welcome attempt failed", map[string]interface{}{
			"session_id": sessionID,
			"attempt":    attempt,
			"error":      lastErr.Error(),
		})

		if attempt < o.options.WelcomeAttempts {
			if err := sleepCtx(ctx, o.options.WelcomeRetryDelay); err != nil {
				lastErr = err
				break
			}
		}
	}

	o.logger.Error("SessionOrchestrator", "Welcome failed, session stays open", map[string]interface{}{
		"session_id": sessionID,
		"error":      lastErr,
	})
	return fmt.Errorf("welcome for %s: %w", sessionID, lastErr)
}

func (o *sessionOrchestrator) sendWelcome(ctx context.Context, h *sessionHandle, doc *store.DocumentContext) error {
	instructions, welcome, err := o.composeWelcome(h.state.ID, doc)
	if err != nil {
		return err
	}

	if err := h.channel.EmitSystemMessage(ctx, instructions); err != nil {
		return fmt.Errorf("emit instructions: %w", err)
	}
	if err := h.channel.EmitAssistantMessage(ctx, welcome); err != nil {
		return fmt.Errorf("emit welcome: %w", err)
	}
	if err := h.channel.RequestResponse(ctx); err != nil {
		return fmt.Errorf("request response: %w", err)
	}
	return nil
}

// composeWelcome prefers the document-aware variant and falls back to the
// plain one when that cannot be rendered.
func (o *sessionOrchestrator) composeWelcome(sessionID string, doc *store.DocumentContext) (string, string, error) {
	if doc != nil {
		instructions, welcome, err := o.composeDocumentWelcome(doc)
		if err == nil {
			return instructions, welcome, nil
		}
		o.logger.Warn("SessionOrchestrator", "Document-aware welcome failed, using plain variant", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	instructions, err := o.renderer.Instructions(false)
	if err != nil {
		return "", "", fmt.Errorf("render instructions: %w", err)
	}
	welcome, err := o.renderer.Welcome(false)
	if err != nil {
		return "", "", fmt.Errorf("render welcome: %w", err)
	}
	return instructions, welcome, nil
}

func (o *sessionOrchestrator) composeDocumentWelcome(doc *store.DocumentContext) (string, string, error) {
	instructions, err := o.renderer.Instructions(true)
	if err != nil {
		return "", "", err
	}
	block, err := o.renderer.DocumentBlock(doc)
	if err != nil {
		return "", "", err
	}
	welcome, err := o.renderer.Welcome(true)
	if err != nil {
		return "", "", err
	}
	return instructions + "\n\n" + block, welcome, nil
}

// OnUserUtterance routes one committed utterance. Empty content is dropped.
func (o *sessionOrchestrator) OnUserUtterance(ctx context.Context, sessionID string, content conversation.Content) error {
	text, ok := conversation.Normalize(content)
	if !ok {
		o.logger.Debug("SessionOrchestrator", "Dropping empty utterance", map[string]interface{}{"session_id": sessionID})
		return nil
	}

	h, err := o.lookup(sessionID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	decision, err := o.router.Route(h.state.Snapshot(), text)
	if err != nil {
		return fmt.Errorf("route utterance for %s: %w", sessionID, err)
	}

	for _, msg := range decision.Messages {
		if err := conversation.Emit(ctx, h.channel, msg); err != nil {
			return fmt.Errorf("emit %s message for %s: %w", msg.Role, sessionID, err)
		}
	}

	o.logger.Debug("SessionOrchestrator", "Utterance routed", map[string]interface{}{
		"session_id": sessionID,
		"branch":     string(decision.Branch),
		"messages":   len(decision.Messages),
	})

	return h.channel.RequestResponse(ctx)
}

// OnDocumentRefreshSignal re-fetches and, when the document changed, tells
// the live conversation about it. No data or unchanged data is a no-op.
func (o *sessionOrchestrator) OnDocumentRefreshSignal(ctx context.Context, sessionID string) error {
	h, err := o.lookup(sessionID)
	if err != nil {
		return err
	}

	h.refreshMu.Lock()
	defer h.refreshMu.Unlock()

	// Fetch outside mu so utterances keep flowing while the network is slow.
	doc := o.fetcher.Fetch(ctx, sessionID)
	if doc == nil {
		o.logger.Debug("SessionOrchestrator", "Refresh found no document", map[string]interface{}{"session_id": sessionID})
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state.Phase == store.PhaseEnded {
		return nil
	}
	if doc.Equal(h.state.Document()) {
		o.logger.Debug("SessionOrchestrator", "Refresh returned the cached document", map[string]interface{}{"session_id": sessionID})
		return nil
	}

	// Before the welcome the document simply rides along with it.
	if !h.state.WelcomeSent {
		h.state.SetDocument(doc)
		o.logger.Info("SessionOrchestrator", "Document cached ahead of welcome", map[string]interface{}{"session_id": sessionID})
		return nil
	}

	notice, err := o.renderer.RefreshNotice(doc)
	if err != nil {
		return fmt.Errorf("render refresh notice: %w", err)
	}
	ack, err := o.renderer.RefreshAcknowledgment(doc)
	if err != nil {
		return fmt.Errorf("render refresh acknowledgment: %w", err)
	}

	// The new document is committed only once the conversation has heard
	// about it, so a failed announcement is retried by the next signal.
	if err := o.announceRefresh(ctx, h, notice, ack); err != nil {
		o.logger.Warn("SessionOrchestrator", "Refresh announcement failed, keeping previous document", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return err
	}
	h.state.SetDocument(doc)

	o.logger.Info("SessionOrchestrator", "Document refreshed in live session", map[string]interface{}{
		"session_id": sessionID,
		"filename":   doc.Metadata.Filename,
		"length":     len(doc.Text),
	})
	return nil
}

func (o *sessionOrchestrator) announceRefresh(ctx context.Context, h *sessionHandle, notice, ack string) error {
	if err := h.channel.EmitSystemMessage(ctx, notice); err != nil {
		return fmt.Errorf("emit refresh notice: %w", err)
	}
	if err := h.channel.EmitAssistantMessage(ctx, ack); err != nil {
		return fmt.Errorf("emit refresh acknowledgment: %w", err)
	}
	if err := h.channel.RequestResponse(ctx); err != nil {
		return fmt.Errorf("request response: %w", err)
	}
	return nil
}

// OnSessionEnded stops the poller and releases the session.
func (o *sessionOrchestrator) OnSessionEnded(sessionID string) {
	o.mu.Lock()
	h, ok := o.sessions[sessionID]
	if ok {
		delete(o.sessions, sessionID)
	}
	active := len(o.sessions)
	o.mu.Unlock()

	if !ok {
		return
	}

	if h.cancelPoll != nil {
		h.cancelPoll()
		<-h.pollDone
	}

	h.mu.Lock()
	h.state.End()
	h.mu.Unlock()

	o.logger.Info("SessionOrchestrator", "Session ended", map[string]interface{}{
		"session_id": sessionID,
		"active":     active,
	})
}

func (o *sessionOrchestrator) BindProfile(sessionID string, profile *entity.CareerProfile) error {
	if profile == nil {
		return fmt.Errorf("bind profile for %s: nil profile", sessionID)
	}
	h, err := o.lookup(sessionID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.state.BindProfile(profile)
	h.mu.Unlock()

	o.logger.Info("SessionOrchestrator", "Profile bound", map[string]interface{}{
		"session_id": sessionID,
		"profile_id": profile.Id,
	})
	return nil
}

func (o *sessionOrchestrator) Profile(sessionID string) (*entity.CareerProfile, error) {
	h, err := o.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Profile.Clone(), nil
}

func (o *sessionOrchestrator) RecommendSkills(sessionID string, skills []string) error {
	h, err := o.lookup(sessionID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.state.RecommendedSkills = append([]string(nil), skills...)
	if h.state.Profile != nil {
		h.state.Profile.RecommendedSkills = append([]string(nil), skills...)
	}
	return nil
}

func (o *sessionOrchestrator) Snapshot(sessionID string) (store.Snapshot, error) {
	h, err := o.lookup(sessionID)
	if err != nil {
		return store.Snapshot{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state.Snapshot(), nil
}

func (o *sessionOrchestrator) HasSession(sessionID string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.sessions[sessionID]
	return ok
}

func (o *sessionOrchestrator) ActiveSessions() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.sessions)
}

// Shutdown ends every live session.
func (o *sessionOrchestrator) Shutdown() {
	o.mu.RLock()
	ids := make([]string, 0, len(o.sessions))
	for id := range o.sessions {
		ids = append(ids, id)
	}
	o.mu.RUnlock()

	for _, id := range ids {
		o.OnSessionEnded(id)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
