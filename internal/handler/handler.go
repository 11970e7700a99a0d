package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
)

// TaskStore is the task persistence used by TaskHandler.
type TaskStore interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error
}

type TeamStore interface {
	List(ctx context.Context) ([]model.Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Team, error)
}

type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	UpdateFullName(ctx context.Context, id uuid.UUID, fullName string) error
}

type RoleStore interface {
	RoleFor(ctx context.Context, userID uuid.UUID) (model.Role, error)
}

// authenticatedUser reads the caller id set by the auth middleware and
// answers 401 when it is missing.
func authenticatedUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}
	return userID, true
}

// pathID parses a uuid route parameter and answers 400 when it is malformed.
func pathID(c *gin.Context, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + what + " ID format"})
		return uuid.Nil, false
	}
	return id, true
}
