package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type TeamHandler struct {
	teams TeamStore
}

func NewTeamHandler(teams TeamStore) *TeamHandler {
	return &TeamHandler{teams: teams}
}

func (h *TeamHandler) List(c *gin.Context) {
	teams, err := h.teams.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve teams"})
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	c.JSON(http.StatusOK, teams)
}

func (h *TeamHandler) GetByID(c *gin.Context) {
	teamID, ok := pathID(c, "id", "team")
	if !ok {
		return
	}

	team, err := h.teams.GetByID(c.Request.Context(), teamID)
	if err != nil {
		if errors.Is(err, repository.ErrTeamNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve team"})
		return
	}
	c.JSON(http.StatusOK, team)
}
