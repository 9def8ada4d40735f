package mapper

import (
	"encoding/json"

	"voice-coach-be/internal/entity"
	"voice-coach-be/internal/model"

	"gorm.io/datatypes"
)

type CareerProfileMapper struct{}

func NewCareerProfileMapper() *CareerProfileMapper {
	return &CareerProfileMapper{}
}

func (m *CareerProfileMapper) ToEntity(mdl *model.CareerProfile) *entity.CareerProfile {
	if mdl == nil {
		return nil
	}
	return &entity.CareerProfile{
		Id:                mdl.Id,
		DreamJob:          mdl.DreamJob,
		CurrentSkills:     mdl.CurrentSkills,
		Education:         mdl.Education,
		RecommendedSkills: m.DecodeSkills(mdl.RecommendedSkills),
		CreatedAt:         mdl.CreatedAt,
		UpdatedAt:         mdl.UpdatedAt,
	}
}

func (m *CareerProfileMapper) ToModel(e *entity.CareerProfile) *model.CareerProfile {
	if e == nil {
		return nil
	}
	return &model.CareerProfile{
		Id:                e.Id,
		DreamJob:          e.DreamJob,
		CurrentSkills:     e.CurrentSkills,
		Education:         e.Education,
		RecommendedSkills: m.EncodeSkills(e.RecommendedSkills),
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

// EncodeSkills stores an empty list as "[]" rather than NULL.
func (m *CareerProfileMapper) EncodeSkills(skills []string) datatypes.JSON {
	if skills == nil {
		skills = []string{}
	}
	raw, err := json.Marshal(skills)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(raw)
}

// DecodeSkills tolerates NULL and malformed columns.
func (m *CareerProfileMapper) DecodeSkills(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var skills []string
	if err := json.Unmarshal(raw, &skills); err != nil {
		return nil
	}
	if len(skills) == 0 {
		return nil
	}
	return skills
}
