package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"voice-coach-be/internal/constant"
	"voice-coach-be/internal/entity"
	"voice-coach-be/internal/pkg/logger"
	"voice-coach-be/internal/pkg/serverutils"
	"voice-coach-be/internal/repository/contract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryProfileRepository struct {
	mu       sync.Mutex
	profiles map[string]*entity.CareerProfile
}

func newMemoryProfileRepository(seed ...*entity.CareerProfile) *memoryProfileRepository {
	r := &memoryProfileRepository{profiles: make(map[string]*entity.CareerProfile)}
	for _, p := range seed {
		r.profiles[p.Id] = p
	}
	return r
}

func (r *memoryProfileRepository) FindByID(ctx context.Context, id string) (*entity.CareerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, contract.ErrProfileNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r *memoryProfileRepository) Create(ctx context.Context, profile *entity.CareerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.Id]; ok {
		return contract.ErrProfileExists
	}
	cp := *profile
	r.profiles[profile.Id] = &cp
	return nil
}

func (r *memoryProfileRepository) UpdateRecommendedSkills(ctx context.Context, id string, skills []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return contract.ErrProfileNotFound
	}
	p.RecommendedSkills = skills
	return nil
}

func newProfileFixture(t *testing.T, seed ...*entity.CareerProfile) (IProfileService, ISessionOrchestrator, *memoryProfileRepository) {
	t.Helper()
	repo := newMemoryProfileRepository(seed...)
	o := newTestOrchestrator(&stubFetcher{}, nil)
	openSession(t, o, "room-1")
	return NewProfileService(repo, o, logger.NewNopLogger()), o, repo
}

func TestLookupProfileBindsSession(t *testing.T) {
	svc, o, _ := newProfileFixture(t, sampleProfile())
	ctx := context.Background()

	out, err := svc.Invoke(ctx, "room-1", ToolLookupProfile, json.RawMessage(`{"id":"nobody"}`))
	require.NoError(t, err)
	assert.Equal(t, constant.ProfileNotFoundResult, out)
	snap, _ := o.Snapshot("room-1")
	assert.False(t, snap.HasProfile)

	out, err = svc.Invoke(ctx, "room-1", ToolLookupProfile, json.RawMessage(`{"id":"u-42"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "User with ID u-42 has a dream job as designer")
	snap, _ = o.Snapshot("room-1")
	assert.True(t, snap.HasProfile)
}

func TestCreateProfile(t *testing.T) {
	svc, o, repo := newProfileFixture(t, sampleProfile())
	ctx := context.Background()

	args := json.RawMessage(`{"id":"u-7","dream_job":"nurse","current_skills":"empathy","education":"BSN"}`)
	out, err := svc.Invoke(ctx, "room-1", ToolCreateProfile, args)
	require.NoError(t, err)
	assert.Equal(t, "Successfully created profile for u-7 with dream job: nurse", out)

	_, err = repo.FindByID(ctx, "u-7")
	require.NoError(t, err)
	profile, _ := o.Profile("room-1")
	require.NotNil(t, profile)
	assert.Equal(t, "nurse", profile.DreamJob)

	t.Run("duplicate id reports failure", func(t *testing.T) {
		dup := json.RawMessage(`{"id":"u-42","dream_job":"x","current_skills":"y","education":"z"}`)
		out, err := svc.Invoke(ctx, "room-1", ToolCreateProfile, dup)
		require.NoError(t, err)
		assert.Equal(t, constant.ProfileCreateFailedResult, out)
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		_, err := svc.Invoke(ctx, "room-1", ToolCreateProfile, json.RawMessage(`{"id":"u-8"}`))
		var vErr *serverutils.ValidationError
		assert.ErrorAs(t, err, &vErr)
	})
}

func TestToolsWithoutProfile(t *testing.T) {
	svc, _, _ := newProfileFixture(t)
	ctx := context.Background()

	out, err := svc.Invoke(ctx, "room-1", ToolGetProfileDetails, nil)
	require.NoError(t, err)
	assert.Equal(t, constant.NoProfileResult, out)

	out, err = svc.Invoke(ctx, "room-1", ToolRecommendSkills, json.RawMessage(`{"skills":["listening"]}`))
	require.NoError(t, err)
	assert.Equal(t, constant.NoProfileForSkillsResult, out)

	out, err = svc.Invoke(ctx, "room-1", ToolGetSkillSuggestions, json.RawMessage(`{"skill":"leadership"}`))
	require.NoError(t, err)
	assert.Equal(t, constant.NoProfileResult, out)
}

func TestSkillTools(t *testing.T) {
	svc, o, repo := newProfileFixture(t, sampleProfile())
	ctx := context.Background()
	_, err := svc.Invoke(ctx, "room-1", ToolLookupProfile, json.RawMessage(`{"id":"u-42"}`))
	require.NoError(t, err)

	out, err := svc.Invoke(ctx, "room-1", ToolRecommendSkills, json.RawMessage(`{"skills":["storytelling","negotiation"]}`))
	require.NoError(t, err)
	assert.Equal(t, "Based on the dream job of designer, the following skills are recommended: storytelling, negotiation", out)

	stored, _ := repo.FindByID(ctx, "u-42")
	assert.Equal(t, []string{"storytelling", "negotiation"}, stored.RecommendedSkills)
	profile, _ := o.Profile("room-1")
	assert.Equal(t, []string{"storytelling", "negotiation"}, profile.RecommendedSkills)

	out, err = svc.Invoke(ctx, "room-1", ToolGetSkillSuggestions, json.RawMessage(`{"skill":"Problem Solving"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "SKILL: PROBLEM SOLVING")
	assert.Contains(t, out, "Problem-solving is a daily requirement in designer roles")

	out, err = svc.Invoke(ctx, "room-1", ToolGetSkillSuggestions, json.RawMessage(`{"skill":"juggling"}`))
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf(constant.UnknownSkillResult, "juggling"), out)
}

func TestUnknownTool(t *testing.T) {
	svc, _, _ := newProfileFixture(t)
	_, err := svc.Invoke(context.Background(), "room-1", "launch_rocket", nil)
	assert.ErrorIs(t, err, ErrUnknownTool)
}
