package taskform_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"taskboard/internal/gateway"
	"taskboard/internal/model"
	"taskboard/internal/notice"
	"taskboard/internal/taskform"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) InsertTask(ctx context.Context, t gateway.NewTask) (*model.Task, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Task), args.Error(1)
}

func (m *MockGateway) ListTeams(ctx context.Context) ([]model.Team, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Team), args.Error(1)
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"bug", "feature", "urgent"}, taskform.ParseTags("bug, feature,  , urgent"))
	assert.Equal(t, []string{}, taskform.ParseTags(""))
	assert.Equal(t, []string{}, taskform.ParseTags(" , ,"))
	assert.Equal(t, []string{"solo"}, taskform.ParseTags("  solo  "))
}

func TestForm_Defaults(t *testing.T) {
	f := taskform.New(new(MockGateway), &notice.Recorder{}, nil)

	assert.Equal(t, model.StatusBacklog, f.Fields.Status)
	assert.Equal(t, model.PriorityMedium, f.Fields.Priority)
}

func TestForm_Submit_EmptyTitleRejectedBeforeRemoteCall(t *testing.T) {
	gw := new(MockGateway)
	rec := &notice.Recorder{}
	f := taskform.New(gw, rec, nil)
	f.Fields.Title = "   "

	_, err := f.Submit(context.Background())

	assert.ErrorIs(t, err, taskform.ErrTitleRequired)
	gw.AssertNotCalled(t, "InsertTask", mock.Anything, mock.Anything)
	assert.Empty(t, rec.Notices())
}

func TestForm_Validate(t *testing.T) {
	f := taskform.New(new(MockGateway), &notice.Recorder{}, nil)
	f.Fields.Title = "ok"

	f.Fields.Status = "archived"
	assert.ErrorIs(t, f.Validate(), model.ErrInvalidStatus)

	f.Fields.Status = model.StatusToday
	f.Fields.Priority = "someday"
	assert.ErrorIs(t, f.Validate(), model.ErrInvalidPriority)

	f.Fields.Priority = model.PriorityHigh
	f.Fields.TeamID = "not-a-uuid"
	assert.ErrorIs(t, f.Validate(), taskform.ErrInvalidTeam)

	f.Fields.TeamID = ""
	f.Fields.DueDate = "31/12/2026"
	assert.ErrorIs(t, f.Validate(), taskform.ErrInvalidDueDate)

	f.Fields.DueDate = "2026-12-31"
	assert.NoError(t, f.Validate())
}

func TestForm_Submit_Success(t *testing.T) {
	gw := new(MockGateway)
	rec := &notice.Recorder{}
	var called *model.Task
	f := taskform.New(gw, rec, func(t *model.Task) { called = t })

	team := uuid.New()
	due := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	f.Fields = taskform.Fields{
		Title:    "Fix login",
		Status:   model.StatusToday,
		Priority: model.PriorityUrgent,
		TeamID:   team.String(),
		Tags:     "bug, feature,  , urgent",
		DueDate:  "2026-11-02",
	}

	expected := gateway.NewTask{
		Title:    "Fix login",
		Status:   model.StatusToday,
		Priority: model.PriorityUrgent,
		TeamID:   &team,
		Tags:     []string{"bug", "feature", "urgent"},
		DueDate:  &due,
	}
	created := &model.Task{ID: uuid.New(), Title: "Fix login"}
	gw.On("InsertTask", mock.Anything, expected).Return(created, nil).Once()

	got, err := f.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, created, got)
	assert.Equal(t, created, called)
	assert.Equal(t, taskform.DefaultFields(), f.Fields)
	last, _ := rec.Last()
	assert.Equal(t, notice.Notice{Kind: notice.KindSuccess, Message: "Task created successfully!"}, last)
	gw.AssertExpectations(t)
}

func TestForm_Submit_NoDueDateOrTeamIsNull(t *testing.T) {
	gw := new(MockGateway)
	f := taskform.New(gw, &notice.Recorder{}, nil)
	f.Fields.Title = "Plain"

	gw.On("InsertTask", mock.Anything, mock.MatchedBy(func(nt gateway.NewTask) bool {
		return nt.DueDate == nil && nt.TeamID == nil && nt.Status == model.StatusBacklog && len(nt.Tags) == 0
	})).Return(&model.Task{Title: "Plain"}, nil).Once()

	_, err := f.Submit(context.Background())

	require.NoError(t, err)
	gw.AssertExpectations(t)
}

func TestForm_Submit_FailureKeepsFields(t *testing.T) {
	gw := new(MockGateway)
	rec := &notice.Recorder{}
	called := false
	f := taskform.New(gw, rec, func(*model.Task) { called = true })
	f.Fields.Title = "Keep me"
	f.Fields.Tags = "a,b"

	gw.On("InsertTask", mock.Anything, mock.Anything).
		Return(nil, &gateway.APIError{Status: http.StatusBadRequest, Message: "invalid task priority"}).Once()

	_, err := f.Submit(context.Background())

	require.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, "Keep me", f.Fields.Title)
	assert.Equal(t, "a,b", f.Fields.Tags)
	last, _ := rec.Last()
	assert.Equal(t, notice.Notice{Kind: notice.KindError, Message: "invalid task priority"}, last)
}

func TestForm_Submit_FailureFallbackMessage(t *testing.T) {
	gw := new(MockGateway)
	rec := &notice.Recorder{}
	f := taskform.New(gw, rec, nil)
	f.Fields.Title = "x"

	gw.On("InsertTask", mock.Anything, mock.Anything).
		Return(nil, &gateway.APIError{Status: http.StatusInternalServerError}).Once()

	_, err := f.Submit(context.Background())

	require.Error(t, err)
	last, _ := rec.Last()
	assert.Equal(t, "Failed to create task", last.Message)
}

func TestForm_Teams(t *testing.T) {
	gw := new(MockGateway)
	f := taskform.New(gw, &notice.Recorder{}, nil)
	teams := []model.Team{{ID: uuid.New(), Name: "Platform"}}
	gw.On("ListTeams", mock.Anything).Return(teams, nil).Once()

	got, err := f.Teams(context.Background())

	require.NoError(t, err)
	assert.Equal(t, teams, got)

	gw.On("ListTeams", mock.Anything).Return(nil, errors.New("down")).Once()
	_, err = f.Teams(context.Background())
	assert.Error(t, err)
}
