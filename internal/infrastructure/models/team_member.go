package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
)

// TeamMember is the team_members row. Defaults live in the migration so that
// false/zero values sent by gorm are never replaced by column defaults.
type TeamMember struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name            string         `gorm:"type:varchar(120);not null"`
	Position        string         `gorm:"type:varchar(120);not null"`
	Bio             null.String    `gorm:"type:text"`
	ImageURL        null.String    `gorm:"type:text"`
	ImageFilePath   null.String    `gorm:"type:text"`
	Email           null.String    `gorm:"type:varchar(255)"`
	Phone           null.String    `gorm:"type:varchar(50)"`
	SocialLinks     string         `gorm:"type:jsonb;not null"`
	Specialties     pq.StringArray `gorm:"type:text[];not null"`
	YearsExperience null.Int
	JoinDate        null.String `gorm:"type:text"`
	DisplayOrder    int         `gorm:"not null;index"`
	Featured        bool        `gorm:"not null"`
	Active          bool        `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (TeamMember) TableName() string {
	return "team_members"
}
