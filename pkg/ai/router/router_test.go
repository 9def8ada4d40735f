package router

import (
	"errors"
	"strings"
	"testing"

	"voice-coach-be/pkg/ai/prompt"
	"voice-coach-be/pkg/conversation"
	"voice-coach-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteDiscoveryWithoutProfile(t *testing.T) {
	r := NewRouter(prompt.NewCoachRenderer(), 0)

	decision, err := r.Route(store.Snapshot{SessionID: "room-3"}, "I want to be a designer")
	require.NoError(t, err)

	assert.Equal(t, BranchDiscovery, decision.Branch)
	require.Len(t, decision.Messages, 1)
	assert.Equal(t, conversation.RoleSystem, decision.Messages[0].Role)
	assert.Contains(t, decision.Messages[0].Content, "I want to be a designer")
}

func TestRouteQueryWithProfile(t *testing.T) {
	r := NewRouter(prompt.NewCoachRenderer(), 0)

	decision, err := r.Route(store.Snapshot{SessionID: "room-3", HasProfile: true}, "What should I practice?")
	require.NoError(t, err)

	assert.Equal(t, BranchQuery, decision.Branch)
	require.Len(t, decision.Messages, 1)
	assert.Equal(t, conversation.Message{Role: conversation.RoleUser, Content: "What should I practice?"}, decision.Messages[0])
}

func TestRouteReminderPrecedesMessage(t *testing.T) {
	docText := strings.Repeat("a", 150) + strings.Repeat("b", 300)
	r := NewRouter(prompt.NewCoachRenderer(), 200)

	tests := []struct {
		name       string
		hasProfile bool
		wantBranch Branch
		wantRole   conversation.Role
	}{
		{name: "discovery", hasProfile: false, wantBranch: BranchDiscovery, wantRole: conversation.RoleSystem},
		{name: "query", hasProfile: true, wantBranch: BranchQuery, wantRole: conversation.RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := store.Snapshot{HasProfile: tt.hasProfile, DocumentAvailable: true, DocumentText: docText}
			decision, err := r.Route(snap, "hello")
			require.NoError(t, err)

			assert.Equal(t, tt.wantBranch, decision.Branch)
			require.Len(t, decision.Messages, 2)

			reminder := decision.Messages[0]
			assert.Equal(t, conversation.RoleSystem, reminder.Role)
			assert.Contains(t, reminder.Content, strings.Repeat("a", 150)+strings.Repeat("b", 50))
			assert.NotContains(t, reminder.Content, strings.Repeat("b", 51))

			assert.Equal(t, tt.wantRole, decision.Messages[1].Role)
		})
	}
}

func TestRouteReminderRepeatsEveryTurn(t *testing.T) {
	r := NewRouter(prompt.NewCoachRenderer(), 0)
	snap := store.Snapshot{HasProfile: true, DocumentAvailable: true, DocumentText: "quarterly goals"}

	for i := 0; i < 3; i++ {
		decision, err := r.Route(snap, "next")
		require.NoError(t, err)
		require.Len(t, decision.Messages, 2)
		assert.Contains(t, decision.Messages[0].Content, "quarterly goals")
	}
}

type failingRenderer struct {
	prompt.CoachRenderer
}

func (failingRenderer) Discovery(string) (string, error) {
	return "", errors.New("template missing")
}

func TestRouteSurfacesRenderErrors(t *testing.T) {
	r := NewRouter(failingRenderer{}, 0)

	_, err := r.Route(store.Snapshot{}, "hi")
	assert.Error(t, err)

	// profile branch does not need the discovery template
	decision, err := r.Route(store.Snapshot{HasProfile: true}, "hi")
	require.NoError(t, err)
	assert.Equal(t, BranchQuery, decision.Branch)
}
