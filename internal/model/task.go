package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the kanban column a task sits in.
type Status string

const (
	StatusBacklog Status = "backlog"
	StatusToday   Status = "today"
	StatusReview  Status = "review"
	StatusDone    Status = "done"
)

// Statuses lists the board columns in display order.
var Statuses = []Status{StatusBacklog, StatusToday, StatusReview, StatusDone}

func (s Status) Valid() bool {
	switch s {
	case StatusBacklog, StatusToday, StatusReview, StatusDone:
		return true
	}
	return false
}

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

var (
	ErrInvalidStatus     = errors.New("invalid task status")
	ErrInvalidPriority   = errors.New("invalid task priority")
	ErrInvalidPercentage = errors.New("percentage complete must be between 0 and 100")
)

// Task is a row of the tasks table. JSON names match the column names so the
// row image carried by a change notification decodes into the same struct.
type Task struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title              string     `gorm:"not null" json:"title"`
	Description        string     `json:"description"`
	Status             Status     `gorm:"type:text;not null;default:backlog" json:"status"`
	Priority           Priority   `gorm:"type:text;not null;default:medium" json:"priority"`
	AssigneeID         *uuid.UUID `gorm:"type:uuid" json:"assignee_id"`
	TeamID             *uuid.UUID `gorm:"type:uuid;index" json:"team_id"`
	PercentageComplete int        `gorm:"not null;default:0" json:"percentage_complete"`
	Tags               []string   `gorm:"type:jsonb;serializer:json" json:"tags"`
	DueDate            *time.Time `json:"due_date"`
	CreatedBy          *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// Validate checks the enumerations and the percentage range.
func (t *Task) Validate() error {
	if !t.Status.Valid() {
		return ErrInvalidStatus
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if t.PercentageComplete < 0 || t.PercentageComplete > 100 {
		return ErrInvalidPercentage
	}
	return nil
}
