package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"voice-coach-be/internal/entity"
	"voice-coach-be/internal/repository/contract"
	"voice-coach-be/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *ProfileRepository {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewSQLiteDB(ctx, filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo, err := NewProfileRepository(ctx, db)
	require.NoError(t, err)
	return repo
}

func TestProfileRepository(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	t.Run("missing profile", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "nobody")
		assert.ErrorIs(t, err, contract.ErrProfileNotFound)
	})

	t.Run("create and find", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &entity.CareerProfile{
			Id:            "u-1",
			DreamJob:      "product designer",
			CurrentSkills: "figma, research",
			Education:     "BSc HCI",
		}))

		p, err := repo.FindByID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "product designer", p.DreamJob)
		assert.Equal(t, "figma, research", p.CurrentSkills)
		assert.Nil(t, p.RecommendedSkills)
		assert.Nil(t, p.UpdatedAt)
	})

	t.Run("duplicate id", func(t *testing.T) {
		err := repo.Create(ctx, &entity.CareerProfile{Id: "u-1", DreamJob: "other"})
		assert.ErrorIs(t, err, contract.ErrProfileExists)

		p, err := repo.FindByID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, "product designer", p.DreamJob)
	})

	t.Run("recommended skills", func(t *testing.T) {
		require.NoError(t, repo.UpdateRecommendedSkills(ctx, "u-1", []string{"storytelling", "feedback"}))

		p, err := repo.FindByID(ctx, "u-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"storytelling", "feedback"}, p.RecommendedSkills)
		assert.NotNil(t, p.UpdatedAt)

		err = repo.UpdateRecommendedSkills(ctx, "nobody", []string{"x"})
		assert.ErrorIs(t, err, contract.ErrProfileNotFound)
	})
}

func TestSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db, err := database.NewSQLiteDB(ctx, filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	defer db.Close()

	_, err = NewProfileRepository(ctx, db)
	require.NoError(t, err)
	_, err = NewProfileRepository(ctx, db)
	require.NoError(t, err)
}
