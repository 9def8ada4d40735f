package dto

import "voice-coach-be/pkg/store"

// --- Profile tool arguments ---

type LookupProfileArgs struct {
	Id string `json:"id" validate:"required"`
}

type CreateProfileArgs struct {
	Id            string `json:"id" validate:"required"`
	DreamJob      string `json:"dream_job" validate:"required"`
	CurrentSkills string `json:"current_skills" validate:"required"`
	Education     string `json:"education" validate:"required"`
}

type RecommendSkillsArgs struct {
	Skills []string `json:"skills" validate:"required,min=1,dive,required"`
}

type SkillSuggestionsArgs struct {
	Skill string `json:"skill" validate:"required"`
}

// --- Document upload ---

type UploadDocumentRequest struct {
	RoomId string `form:"room_id" validate:"required,max=128"`
}

type UploadDocumentResponse struct {
	RoomId   string                 `json:"room_id"`
	Metadata store.DocumentMetadata `json:"metadata"`
	Preview  string                 `json:"preview"`
}

// --- Join token ---

type TokenRequest struct {
	Name string `query:"name"`
	Room string `query:"room" validate:"omitempty,max=128"`
}

type TokenResponse struct {
	Token    string `json:"token"`
	Room     string `json:"room"`
	Identity string `json:"identity"`
}

type HealthResponse struct {
	Status         string `json:"status"`
	ActiveSessions int    `json:"active_sessions"`
	StoredContexts int    `json:"stored_contexts"`
}
