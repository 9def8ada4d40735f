package router

import (
	"fmt"

	"voice-coach-be/pkg/ai/prompt"
	"voice-coach-be/pkg/conversation"
	"voice-coach-be/pkg/store"
)

// DefaultExcerptLength bounds the document excerpt re-injected on every turn.
const DefaultExcerptLength = 200

// Branch names the conversation flow an utterance was routed into.
type Branch string

const (
	BranchDiscovery Branch = "DISCOVERY"
	BranchQuery     Branch = "QUERY"
)

// Decision is the ordered list of messages to emit for one utterance.
type Decision struct {
	Branch   Branch
	Messages []conversation.Message
}

// Router picks the conversation branch for each committed utterance.
// It holds no per-session state.
type Router struct {
	renderer      prompt.Renderer
	excerptLength int
}

func NewRouter(renderer prompt.Renderer, excerptLength int) *Router {
	if excerptLength <= 0 {
		excerptLength = DefaultExcerptLength
	}
	return &Router{
		renderer:      renderer,
		excerptLength: excerptLength,
	}
}

// Route decides which messages precede the response request.
// A present profile always wins over discovery.
func (r *Router) Route(snap store.Snapshot, utterance string) (*Decision, error) {
	decision := &Decision{}

	// 1. Document reminder, every turn while a document is cached
	if snap.DocumentAvailable {
		reminder, err := r.renderer.Reminder(prompt.Excerpt(snap.DocumentText, r.excerptLength))
		if err != nil {
			return nil, fmt.Errorf("render reminder: %w", err)
		}
		decision.Messages = append(decision.Messages, conversation.Message{
			Role:    conversation.RoleSystem,
			Content: reminder,
		})
	}

	// 2. Normal query once a profile exists
	if snap.HasProfile {
		decision.Branch = BranchQuery
		decision.Messages = append(decision.Messages, conversation.Message{
			Role:    conversation.RoleUser,
			Content: utterance,
		})
		return decision, nil
	}

	// 3. Discovery template embeds the utterance itself
	discovery, err := r.renderer.Discovery(utterance)
	if err != nil {
		return nil, fmt.Errorf("render discovery prompt: %w", err)
	}
	decision.Branch = BranchDiscovery
	decision.Messages = append(decision.Messages, conversation.Message{
		Role:    conversation.RoleSystem,
		Content: discovery,
	})
	return decision, nil
}
