package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/internal/model"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// RoleFor returns the user's role. admin sorts before member, so a user
// holding both is reported as admin. Users without a row are members.
func (r *RoleRepository) RoleFor(ctx context.Context, userID uuid.UUID) (model.Role, error) {
	var roles []model.UserRole
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("role").
		Limit(1).
		Find(&roles).Error
	if err != nil {
		return "", err
	}
	if len(roles) == 0 {
		return model.RoleMember, nil
	}
	return roles[0].Role, nil
}
