package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"voice-coach-be/internal/constant"
	"voice-coach-be/internal/dto"
	"voice-coach-be/internal/entity"
	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/internal/pkg/serverutils"
	"voice-coach-be/internal/repository/contract"
)

// Tool names the model may call.
const (
	ToolLookupProfile       = "lookup_profile"
	ToolCreateProfile       = "create_profile"
	ToolGetProfileDetails   = "get_profile_details"
	ToolRecommendSkills     = "recommend_skills"
	ToolGetSkillSuggestions = "get_skill_suggestions"
)

var ErrUnknownTool = errors.New("unknown tool")

// ProfileBinder is the slice of the orchestrator the profile tools need.
type ProfileBinder interface {
	BindProfile(sessionID string, profile *entity.CareerProfile) error
	Profile(sessionID string) (*entity.CareerProfile, error)
	RecommendSkills(sessionID string, skills []string) error
}

type IProfileService interface {
	// Invoke runs one tool call and returns the text handed back to the model.
	Invoke(ctx context.Context, sessionID, name string, arguments json.RawMessage) (string, error)

	LookupProfile(ctx context.Context, sessionID string, args dto.LookupProfileArgs) (string, error)
	CreateProfile(ctx context.Context, sessionID string, args dto.CreateProfileArgs) (string, error)
	GetProfileDetails(ctx context.Context, sessionID string) (string, error)
	RecommendSkills(ctx context.Context, sessionID string, args dto.RecommendSkillsArgs) (string, error)
	GetSkillSuggestions(ctx context.Context, sessionID string, args dto.SkillSuggestionsArgs) (string, error)
}

type profileService struct {
	repo   contract.ProfileRepository
	binder ProfileBinder
	logger logger.ILogger
}

func NewProfileService(repo contract.ProfileRepository, binder ProfileBinder, log logger.ILogger) IProfileService {
	return &profileService{
		repo:   repo,
		binder: binder,
		logger: log,
	}
}

func decodeArgs(arguments json.RawMessage, out interface{}) error {
	if len(arguments) > 0 && string(arguments) != "null" {
		if err := json.Unmarshal(arguments, out); err != nil {
			return fmt.Errorf("invalid tool arguments: %w", err)
		}
	}
	return serverutils.ValidateStruct(out)
}

func (s *profileService) Invoke(ctx context.Context, sessionID, name string, arguments json.RawMessage) (string, error) {
	switch name {
	case ToolLookupProfile:
		var args dto.LookupProfileArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return "", err
		}
		return s.LookupProfile(ctx, sessionID, args)

	case ToolCreateProfile:
		var args dto.CreateProfileArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return "", err
		}
		return s.CreateProfile(ctx, sessionID, args)

	case ToolGetProfileDetails:
		return s.GetProfileDetails(ctx, sessionID)

	case ToolRecommendSkills:
		var args dto.RecommendSkillsArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return "", err
		}
		return s.RecommendSkills(ctx, sessionID, args)

	case ToolGetSkillSuggestions:
		var args dto.SkillSuggestionsArgs
		if err := decodeArgs(arguments, &args); err != nil {
			return "", err
		}
		return s.GetSkillSuggestions(ctx, sessionID, args)

	default:
		return "", fmt.Errorf("%s: %w", name, ErrUnknownTool)
	}
}

func (s *profileService) LookupProfile(ctx context.Context, sessionID string, args dto.LookupProfileArgs) (string, error) {
	profile, err := s.repo.FindByID(ctx, args.Id)
	if err != nil {
		if errors.Is(err, contract.ErrProfileNotFound) {
			return constant.ProfileNotFoundResult, nil
		}
		return "", fmt.Errorf("lookup profile %s: %w", args.Id, err)
	}

	if err := s.binder.BindProfile(sessionID, profile); err != nil {
		return "", err
	}

	s.logger.Info("ProfileService", "Profile found and bound", map[string]interface{}{
		"session_id": sessionID,
		"profile_id": profile.Id,
	})
	return fmt.Sprintf(constant.ProfileDetailsResult, profile.Summary()), nil
}

func (s *profileService) CreateProfile(ctx context.Context, sessionID string, args dto.CreateProfileArgs) (string, error) {
	profile := &entity.CareerProfile{
		Id:            strings.TrimSpace(args.Id),
		DreamJob:      args.DreamJob,
		CurrentSkills: args.CurrentSkills,
		Education:     args.Education,
	}

	if err := s.repo.Create(ctx, profile); err != nil {
		s.logger.Warn("ProfileService", "Profile creation failed", map[string]interface{}{
			"session_id": sessionID,
			"profile_id": profile.Id,
			"error":      err.Error(),
		})
		return constant.ProfileCreateFailedResult, nil
	}

	if err := s.binder.BindProfile(sessionID, profile); err != nil {
		return "", err
	}

	s.logger.Info("ProfileService", "Profile created", map[string]interface{}{
		"session_id": sessionID,
		"profile_id": profile.Id,
	})
	return fmt.Sprintf(constant.ProfileCreatedResult, profile.Id, profile.DreamJob), nil
}

func (s *profileService) GetProfileDetails(ctx context.Context, sessionID string) (string, error) {
	profile, err := s.binder.Profile(sessionID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return constant.NoProfileResult, nil
	}
	return profile.Summary(), nil
}

func (s *profileService) RecommendSkills(ctx context.Context, sessionID string, args dto.RecommendSkillsArgs) (string, error) {
	profile, err := s.binder.Profile(sessionID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return constant.NoProfileForSkillsResult, nil
	}

	if err := s.binder.RecommendSkills(sessionID, args.Skills); err != nil {
		return "", err
	}

	// The session keeps the list even if persisting it fails.
	if err := s.repo.UpdateRecommendedSkills(ctx, profile.Id, args.Skills); err != nil {
		s.logger.Warn("ProfileService", "Failed to persist recommended skills", map[string]interface{}{
			"session_id": sessionID,
			"profile_id": profile.Id,
			"error":      err.Error(),
		})
	}

	return fmt.Sprintf(constant.SkillsRecommendedResult, profile.DreamJob, strings.Join(args.Skills, ", ")), nil
}

func (s *profileService) GetSkillSuggestions(ctx context.Context, sessionID string, args dto.SkillSuggestionsArgs) (string, error) {
	profile, err := s.binder.Profile(sessionID)
	if err != nil {
		return "", err
	}
	if profile == nil {
		return constant.NoProfileResult, nil
	}

	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(args.Skill)), " ", "_")
	suggestion, ok := constant.SkillSuggestions[key]
	if !ok {
		return fmt.Sprintf(constant.UnknownSkillResult, args.Skill), nil
	}

	return fmt.Sprintf(constant.SkillSuggestionResult,
		strings.ToUpper(args.Skill),
		fmt.Sprintf(suggestion.Importance, profile.DreamJob),
		suggestion.Exercise,
		suggestion.Resource,
	), nil
}
