package entity

import (
	"fmt"
	"time"
)

type CareerProfile struct {
	Id                string
	DreamJob          string
	CurrentSkills     string
	Education         string
	RecommendedSkills []string
	CreatedAt         time.Time
	UpdatedAt         *time.Time
}

// Summary renders the profile the way tool results quote it back to the model.
func (p *CareerProfile) Summary() string {
	if p == nil {
		return "No profile available"
	}
	return fmt.Sprintf("User with ID %s has a dream job as %s, with skills in %s, and educational background: %s.",
		p.Id, p.DreamJob, p.CurrentSkills, p.Education)
}

// Clone returns a copy that shares no slices with p.
func (p *CareerProfile) Clone() *CareerProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.RecommendedSkills = append([]string(nil), p.RecommendedSkills...)
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}
