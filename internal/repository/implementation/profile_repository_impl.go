package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voice-coach-be/internal/entity"
	"voice-coach-be/internal/mapper"
	"voice-coach-be/internal/model"
	"voice-coach-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CareerProfileMapper
}

func NewProfileRepository(db *gorm.DB) contract.ProfileRepository {
	return &ProfileRepositoryImpl{
		db:     db,
		mapper: mapper.NewCareerProfileMapper(),
	}
}

func (r *ProfileRepositoryImpl) FindByID(ctx context.Context, id string) (*entity.CareerProfile, error) {
	var m model.CareerProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%s: %w", id, contract.ErrProfileNotFound)
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProfileRepositoryImpl) Create(ctx context.Context, profile *entity.CareerProfile) error {
	m := r.mapper.ToModel(profile)

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", profile.Id, contract.ErrProfileExists)
	}

	*profile = *r.mapper.ToEntity(m)
	return nil
}

func (r *ProfileRepositoryImpl) UpdateRecommendedSkills(ctx context.Context, id string, skills []string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.CareerProfile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"recommended_skills": r.mapper.EncodeSkills(skills),
			"updated_at":         &now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", id, contract.ErrProfileNotFound)
	}
	return nil
}
