// Package taskform collects the fields of a new task and inserts it.
package taskform

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/gateway"
	"taskboard/internal/model"
	"taskboard/internal/notice"
)

const dueDateLayout = "2006-01-02"

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrInvalidTeam    = errors.New("team must be a valid id")
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")
)

const (
	msgCreated      = "Task created successfully!"
	msgCreateFailed = "Failed to create task"
)

type Gateway interface {
	InsertTask(ctx context.Context, t gateway.NewTask) (*model.Task, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
}

// Fields is the raw input. Tags is comma separated, DueDate is YYYY-MM-DD
// and TeamID is empty for no team.
type Fields struct {
	Title       string
	Description string
	Status      model.Status
	Priority    model.Priority
	TeamID      string
	Tags        string
	DueDate     string
}

func DefaultFields() Fields {
	return Fields{Status: model.StatusBacklog, Priority: model.PriorityMedium}
}

// Form is not safe for concurrent use.
type Form struct {
	Fields Fields

	gw        Gateway
	notices   notice.Sink
	onSuccess func(*model.Task)
}

// New returns a form with default fields. onSuccess may be nil.
func New(gw Gateway, notices notice.Sink, onSuccess func(*model.Task)) *Form {
	return &Form{Fields: DefaultFields(), gw: gw, notices: notices, onSuccess: onSuccess}
}

// ParseTags splits on commas, trims each segment and drops empty ones.
func ParseTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Validate checks the fields without touching the remote store.
func (f *Form) Validate() error {
	_, err := f.build()
	return err
}

func (f *Form) build() (gateway.NewTask, error) {
	in := f.Fields
	if strings.TrimSpace(in.Title) == "" {
		return gateway.NewTask{}, ErrTitleRequired
	}
	if !in.Status.Valid() {
		return gateway.NewTask{}, model.ErrInvalidStatus
	}
	if !in.Priority.Valid() {
		return gateway.NewTask{}, model.ErrInvalidPriority
	}

	t := gateway.NewTask{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		Priority:    in.Priority,
		Tags:        ParseTags(in.Tags),
	}
	if id := strings.TrimSpace(in.TeamID); id != "" {
		teamID, err := uuid.Parse(id)
		if err != nil {
			return gateway.NewTask{}, ErrInvalidTeam
		}
		t.TeamID = &teamID
	}
	if d := strings.TrimSpace(in.DueDate); d != "" {
		due, err := time.Parse(dueDateLayout, d)
		if err != nil {
			return gateway.NewTask{}, ErrInvalidDueDate
		}
		t.DueDate = &due
	}
	return t, nil
}

// Submit validates and performs exactly one insert. On success the fields go
// back to their defaults and the success callback runs; on failure they are
// kept so the user can retry. Validation errors are returned without a
// notice and without a remote call.
func (f *Form) Submit(ctx context.Context) (*model.Task, error) {
	t, err := f.build()
	if err != nil {
		return nil, err
	}

	created, err := f.gw.InsertTask(ctx, t)
	if err != nil {
		f.notices.Error(failureMessage(err))
		return nil, err
	}

	f.notices.Success(msgCreated)
	f.Reset()
	if f.onSuccess != nil {
		f.onSuccess(created)
	}
	return created, nil
}

func (f *Form) Reset() {
	f.Fields = DefaultFields()
}

// Teams loads the team choices offered by the form.
func (f *Form) Teams(ctx context.Context) ([]model.Team, error) {
	return f.gw.ListTeams(ctx)
}

func failureMessage(err error) string {
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return msgCreateFailed
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgCreateFailed
}
