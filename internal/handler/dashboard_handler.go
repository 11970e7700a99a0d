package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/model"
)

type TaskCounter interface {
	CountByStatus(ctx context.Context) (map[model.Status]int64, int64, error)
}

type RowCounter interface {
	Count(ctx context.Context) (int64, error)
}

type DashboardHandler struct {
	tasks    TaskCounter
	profiles RowCounter
	teams    RowCounter
}

func NewDashboardHandler(tasks TaskCounter, profiles, teams RowCounter) *DashboardHandler {
	return &DashboardHandler{tasks: tasks, profiles: profiles, teams: teams}
}

// Get returns the aggregate counts behind the dashboard stat cards
func (h *DashboardHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	byStatus, total, err := h.tasks.CountByStatus(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count tasks"})
		return
	}
	users, err := h.profiles.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
		return
	}
	teams, err := h.teams.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count teams"})
		return
	}

	counts := model.DashboardCounts{
		TotalTasks: total,
		ByStatus:   make(map[model.Status]int64, len(model.Statuses)),
		TotalUsers: users,
		TotalTeams: teams,
	}
	for _, s := range model.Statuses {
		counts.ByStatus[s] = byStatus[s]
	}
	c.JSON(http.StatusOK, counts)
}
