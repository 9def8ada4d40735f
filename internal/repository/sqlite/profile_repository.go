// Package sqlite stores career profiles in an embedded SQLite file for
// single-host deployments.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"voice-coach-be/internal/entity"
	"voice-coach-be/internal/mapper"
	"voice-coach-be/internal/repository/contract"
)

const schema = `
CREATE TABLE IF NOT EXISTS career_profiles (
	id                 TEXT PRIMARY KEY,
	dream_job          TEXT NOT NULL,
	current_skills     TEXT NOT NULL,
	education          TEXT NOT NULL,
	recommended_skills TEXT NOT NULL DEFAULT '[]',
	created_at         INTEGER NOT NULL,
	updated_at         INTEGER
);`

type ProfileRepository struct {
	db     *sql.DB
	mapper *mapper.CareerProfileMapper
}

// NewProfileRepository creates the schema if needed.
func NewProfileRepository(ctx context.Context, db *sql.DB) (*ProfileRepository, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &ProfileRepository{db: db, mapper: mapper.NewCareerProfileMapper()}, nil
}

var _ contract.ProfileRepository = (*ProfileRepository)(nil)

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*entity.CareerProfile, error) {
	var (
		p         entity.CareerProfile
		skills    string
		createdAt int64
		updatedAt sql.NullInt64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT id, dream_job, current_skills, education, recommended_skills, created_at, updated_at
		FROM career_profiles WHERE id = ?`, id,
	).Scan(&p.Id, &p.DreamJob, &p.CurrentSkills, &p.Education, &skills, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, contract.ErrProfileNotFound)
		}
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	p.RecommendedSkills = r.mapper.DecodeSkills([]byte(skills))
	p.CreatedAt = time.Unix(createdAt, 0)
	if updatedAt.Valid {
		t := time.Unix(updatedAt.Int64, 0)
		p.UpdatedAt = &t
	}
	return &p, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile *entity.CareerProfile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now()
	}

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO career_profiles (id, dream_job, current_skills, education, recommended_skills, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		profile.Id, profile.DreamJob, profile.CurrentSkills, profile.Education,
		string(r.mapper.EncodeSkills(profile.RecommendedSkills)), profile.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", profile.Id, contract.ErrProfileExists)
	}
	return nil
}

func (r *ProfileRepository) UpdateRecommendedSkills(ctx context.Context, id string, skills []string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE career_profiles SET recommended_skills = ?, updated_at = ? WHERE id = ?`,
		string(r.mapper.EncodeSkills(skills)), time.Now().Unix(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update skills: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, contract.ErrProfileNotFound)
	}
	return nil
}
