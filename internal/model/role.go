package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// UserRole associates a user with a role. Users without a row are members.
type UserRole struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Role   Role      `gorm:"type:text;primaryKey" json:"role"`
}
