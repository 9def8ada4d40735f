package store

import (
	"voice-coach-be/internal/entity"
)

// Session phases
const (
	PhaseNew      = "NEW"
	PhaseWelcomed = "WELCOMED"
	PhaseEnded    = "ENDED"
)

// Session represents the live conversational state of one room.
// It is not safe for concurrent use; the orchestrator serializes access.
type Session struct {
	ID    string `json:"id"` // room name
	Phase string `json:"phase"`

	WelcomeSent bool `json:"welcome_sent"`

	// THE PROFILE (set by lookup/create tools, never cleared)
	HasProfile        bool                  `json:"has_profile"`
	Profile           *entity.CareerProfile `json:"profile,omitempty"`
	RecommendedSkills []string              `json:"recommended_skills,omitempty"`

	document          *DocumentContext
	documentAvailable bool
}

// Snapshot is the read-only view the message router decides on.
type Snapshot struct {
	SessionID         string
	HasProfile        bool
	DocumentAvailable bool
	DocumentText      string
}

func NewSession(id string) *Session {
	return &Session{
		ID:    id,
		Phase: PhaseNew,
	}
}

// SetDocument replaces the cached document. A nil doc clears it.
func (s *Session) SetDocument(doc *DocumentContext) {
	s.document = doc.Clone()
	s.documentAvailable = s.document != nil
}

func (s *Session) Document() *DocumentContext {
	return s.document.Clone()
}

func (s *Session) DocumentAvailable() bool {
	return s.documentAvailable
}

// MarkWelcomed records that the welcome sequence completed. Calling it again is a no-op.
func (s *Session) MarkWelcomed() {
	if s.WelcomeSent {
		return
	}
	s.WelcomeSent = true
	if s.Phase == PhaseNew {
		s.Phase = PhaseWelcomed
	}
}

// BindProfile attaches a resolved profile. HasProfile never reverts to false.
func (s *Session) BindProfile(profile *entity.CareerProfile) {
	if profile == nil {
		return
	}
	s.Profile = profile
	s.HasProfile = true
	if len(profile.RecommendedSkills) > 0 {
		s.RecommendedSkills = append([]string(nil), profile.RecommendedSkills...)
	}
}

func (s *Session) End() {
	s.Phase = PhaseEnded
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID:         s.ID,
		HasProfile:        s.HasProfile,
		DocumentAvailable: s.documentAvailable,
	}
	if s.document != nil {
		snap.DocumentText = s.document.Text
	}
	return snap
}
