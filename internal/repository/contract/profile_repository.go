package contract

import (
	"context"
	"errors"

	"voice-coach-be/internal/entity"
)

var (
	ErrProfileNotFound = errors.New("career profile not found")
	ErrProfileExists   = errors.New("career profile already exists")
)

// ProfileRepository persists career profiles keyed by the user's own id.
type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*entity.CareerProfile, error)
	Create(ctx context.Context, profile *entity.CareerProfile) error
	UpdateRecommendedSkills(ctx context.Context, id string, skills []string) error
}
