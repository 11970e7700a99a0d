package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type ProfileHandler struct {
	profiles ProfileStore
	roles    RoleStore
}

func NewProfileHandler(profiles ProfileStore, roles RoleStore) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, roles: roles}
}

// UpdateProfileRequest carries the one editable profile field
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" binding:"required"`
}

// RoleResponse is the body of GET /roles/:user_id
type RoleResponse struct {
	UserID  string     `json:"user_id"`
	Role    model.Role `json:"role"`
	IsAdmin bool       `json:"is_admin"`
}

func (h *ProfileHandler) GetByID(c *gin.Context) {
	profileID, ok := pathID(c, "id", "profile")
	if !ok {
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), profileID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// Update changes the caller's display name. Users can only edit themselves.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}
	profileID, ok := pathID(c, "id", "profile")
	if !ok {
		return
	}
	if profileID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only update your own profile"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.profiles.UpdateFullName(c.Request.Context(), profileID, *req.FullName); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	profile, err := h.profiles.GetByID(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) Role(c *gin.Context) {
	userID, ok := pathID(c, "user_id", "user")
	if !ok {
		return
	}

	role, err := h.roles.RoleFor(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load role"})
		return
	}
	c.JSON(http.StatusOK, RoleResponse{
		UserID:  userID.String(),
		Role:    role,
		IsAdmin: role == model.RoleAdmin,
	})
}
