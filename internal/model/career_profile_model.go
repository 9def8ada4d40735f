package model

import (
	"time"

	"gorm.io/datatypes"
)

type CareerProfile struct {
	Id                string         `gorm:"type:varchar(100);primaryKey"`
	DreamJob          string         `gorm:"type:text;not null"`
	CurrentSkills     string         `gorm:"type:text;not null"`
	Education         string         `gorm:"type:text;not null"`
	RecommendedSkills datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt         time.Time      `gorm:"autoCreateTime"`
	UpdatedAt         *time.Time
}

func (CareerProfile) TableName() string {
	return "career_profiles"
}
