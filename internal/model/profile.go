package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile mirrors an authenticated user. Only FullName is edited from here.
type Profile struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string     `gorm:"uniqueIndex;not null" json:"email"`
	FullName  *string    `json:"full_name"`
	AvatarURL *string    `json:"avatar_url"`
	TeamID    *uuid.UUID `gorm:"type:uuid;index" json:"team_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// DisplayName returns the full name when set, the email otherwise.
func (p *Profile) DisplayName() string {
	if p.FullName != nil && *p.FullName != "" {
		return *p.FullName
	}
	return p.Email
}
