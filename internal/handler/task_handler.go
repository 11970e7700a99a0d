package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/repository"
)

type TaskHandler struct {
	tasks TaskStore
}

func NewTaskHandler(tasks TaskStore) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTaskRequest is the body of POST /tasks
type CreateTaskRequest struct {
	Title              string         `json:"title" binding:"required"`
	Description        string         `json:"description"`
	Status             model.Status   `json:"status"`
	Priority           model.Priority `json:"priority"`
	AssigneeID         *uuid.UUID     `json:"assignee_id"`
	TeamID             *uuid.UUID     `json:"team_id"`
	PercentageComplete int            `json:"percentage_complete"`
	Tags               []string       `json:"tags"`
	DueDate            *time.Time     `json:"due_date"`
}

// UpdateTaskRequest is the body of PATCH /tasks/:id. Only the fields present
// are written.
type UpdateTaskRequest struct {
	Title              *string         `json:"title"`
	Description        *string         `json:"description"`
	Status             *model.Status   `json:"status"`
	Priority           *model.Priority `json:"priority"`
	AssigneeID         *uuid.UUID      `json:"assignee_id"`
	TeamID             *uuid.UUID      `json:"team_id"`
	PercentageComplete *int            `json:"percentage_complete"`
	Tags               *[]string       `json:"tags"`
	DueDate            *time.Time      `json:"due_date"`
}

// List returns all tasks, newest first
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tasks"})
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// Create inserts a task attributed to the caller
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
		return
	}

	task := &model.Task{
		Title:              req.Title,
		Description:        req.Description,
		Status:             req.Status,
		Priority:           req.Priority,
		AssigneeID:         req.AssigneeID,
		TeamID:             req.TeamID,
		PercentageComplete: req.PercentageComplete,
		Tags:               req.Tags,
		DueDate:            req.DueDate,
		CreatedBy:          &userID,
	}
	if task.Status == "" {
		task.Status = model.StatusBacklog
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	if err := task.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		if msg, ok := referenceMessage(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, task)
}

// Update applies a partial update to one task
func (h *TaskHandler) Update(c *gin.Context) {
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	fields, err := req.fields()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No fields to update"})
		return
	}

	// a drag between columns sends only the status
	if status, ok := fields["status"].(model.Status); ok && len(fields) == 1 {
		err = h.tasks.UpdateStatus(c.Request.Context(), taskID, status)
	} else {
		err = h.tasks.Update(c.Request.Context(), taskID, fields)
	}
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		if msg, ok := referenceMessage(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// referenceMessage names the missing row behind a rejected task write
func referenceMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, repository.ErrTeamNotFound):
		return "Team not found", true
	case errors.Is(err, repository.ErrAssigneeNotFound):
		return "Assignee not found", true
	case errors.Is(err, repository.ErrProfileNotFound):
		return "Profile not found", true
	}
	return "", false
}

var errEmptyTitle = errors.New("title cannot be empty")

func (r UpdateTaskRequest) fields() (map[string]any, error) {
	fields := map[string]any{}
	if r.Title != nil {
		if strings.TrimSpace(*r.Title) == "" {
			return nil, errEmptyTitle
		}
		fields["title"] = *r.Title
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.Status != nil {
		if !r.Status.Valid() {
			return nil, model.ErrInvalidStatus
		}
		fields["status"] = *r.Status
	}
	if r.Priority != nil {
		if !r.Priority.Valid() {
			return nil, model.ErrInvalidPriority
		}
		fields["priority"] = *r.Priority
	}
	if r.AssigneeID != nil {
		fields["assignee_id"] = *r.AssigneeID
	}
	if r.TeamID != nil {
		fields["team_id"] = *r.TeamID
	}
	if r.PercentageComplete != nil {
		if *r.PercentageComplete < 0 || *r.PercentageComplete > 100 {
			return nil, model.ErrInvalidPercentage
		}
		fields["percentage_complete"] = *r.PercentageComplete
	}
	if r.Tags != nil {
		// map updates bypass the field serializer
		tags := *r.Tags
		if tags == nil {
			tags = []string{}
		}
		raw, err := json.Marshal(tags)
		if err != nil {
			return nil, err
		}
		fields["tags"] = string(raw)
	}
	if r.DueDate != nil {
		fields["due_date"] = *r.DueDate
	}
	return fields, nil
}
