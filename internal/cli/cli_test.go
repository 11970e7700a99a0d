package cli_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/cli"
	"taskboard/internal/config"
	"taskboard/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	mu      sync.Mutex
	userID  uuid.UUID
	tasks   []model.Task
	patched map[string]string
	created []map[string]any
	cfg     *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	f := &fixture{userID: uuid.New(), patched: map[string]string{}}
	due := time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC)
	f.tasks = []model.Task{
		{ID: uuid.New(), Title: "Write docs", Status: model.StatusToday, Priority: model.PriorityLow, CreatedAt: time.Now().Add(-time.Hour), DueDate: &due},
		{ID: uuid.New(), Title: "Fix login", Status: model.StatusBacklog, Priority: model.PriorityUrgent, Tags: []string{"bug"}, CreatedAt: time.Now().Add(-2 * time.Hour)},
	}

	r := gin.New()
	r.GET("/tasks", func(c *gin.Context) { c.JSON(http.StatusOK, f.tasks) })
	r.POST("/tasks", func(c *gin.Context) {
		var body map[string]any
		_ = c.ShouldBindJSON(&body)
		f.mu.Lock()
		f.created = append(f.created, body)
		f.mu.Unlock()
		c.JSON(http.StatusCreated, model.Task{ID: uuid.New(), Title: body["title"].(string)})
	})
	r.PATCH("/tasks/:id", func(c *gin.Context) {
		var body map[string]string
		_ = c.ShouldBindJSON(&body)
		f.mu.Lock()
		f.patched[c.Param("id")] = body["status"]
		f.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{})
	})
	r.GET("/teams", func(c *gin.Context) { c.JSON(http.StatusOK, []model.Team{{ID: uuid.New(), Name: "Core"}}) })
	r.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.DashboardCounts{TotalTasks: 2, ByStatus: map[model.Status]int64{model.StatusToday: 1}})
	})
	r.GET("/roles/:user_id", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"role": "member"}) })
	r.GET("/profiles/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.Profile{ID: f.userID, Email: "dev@example.com"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	token, err := auth.GenerateToken([]byte("s"), f.userID.String(), time.Hour)
	require.NoError(t, err)
	f.cfg = &config.Config{APIURL: srv.URL, Token: token, HTTPTimeout: 5 * time.Second}
	return f
}

func (f *fixture) run(args ...string) (string, string, int) {
	var out, errOut bytes.Buffer
	code := cli.Run(context.Background(), &out, &errOut, args, f.cfg, zap.NewNop())
	f.mu.Lock()
	defer f.mu.Unlock()
	return out.String(), errOut.String(), code
}

func TestRun_Help(t *testing.T) {
	f := newFixture(t)
	out, _, code := f.run("--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Usage: board")
}

func TestRun_UnknownCommand(t *testing.T) {
	f := newFixture(t)
	_, errOut, code := f.run("frobnicate")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unknown command")
}

func TestRun_RequiresToken(t *testing.T) {
	f := newFixture(t)
	f.cfg.Token = ""
	_, errOut, code := f.run("list")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "BOARD_TOKEN")
}

func TestRun_List(t *testing.T) {
	f := newFixture(t)
	out, _, code := f.run("list")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Write docs")
	assert.Contains(t, out, "1 hour ago")
}

func TestRun_Board(t *testing.T) {
	f := newFixture(t)
	out, _, code := f.run("board")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Today (1)")
	assert.Contains(t, out, "In Review (0)")
	assert.Contains(t, out, "#bug")
	assert.Contains(t, out, "Write docs [low] due Oct 20, 2026")
}

func TestRun_Move(t *testing.T) {
	f := newFixture(t)
	id := f.tasks[0].ID.String()

	out, _, code := f.run("move", id, "done")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Task moved successfully")
	assert.Equal(t, "done", f.patched[id])
}

func TestRun_Move_SameColumnIsNoop(t *testing.T) {
	f := newFixture(t)
	id := f.tasks[0].ID.String()

	out, _, code := f.run("move", id, "today")
	assert.Equal(t, 0, code)
	assert.Empty(t, out)
	assert.Empty(t, f.patched)
}

func TestRun_Move_BadArgs(t *testing.T) {
	f := newFixture(t)
	_, errOut, code := f.run("move", f.tasks[0].ID.String(), "archived")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown column")

	_, errOut, code = f.run("move")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "task id is required")
}

func TestRun_Create(t *testing.T) {
	f := newFixture(t)
	out, _, code := f.run("create", "Ship", "it", "-p", "high", "-t", "bug, feature,  , urgent")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Task created successfully!")
	require.Len(t, f.created, 1)
	assert.Equal(t, "Ship it", f.created[0]["title"])
	assert.Equal(t, "high", f.created[0]["priority"])
	assert.Equal(t, []any{"bug", "feature", "urgent"}, f.created[0]["tags"])
}

func TestRun_Create_EmptyTitle(t *testing.T) {
	f := newFixture(t)
	_, errOut, code := f.run("create")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "title is required")
	assert.Empty(t, f.created)
}

func TestRun_DashboardAndProfile(t *testing.T) {
	f := newFixture(t)
	out, _, code := f.run("dashboard")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Welcome back, User!")
	assert.Contains(t, out, "Total Tasks")

	out, _, code = f.run("profile")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "dev@example.com")
	assert.Contains(t, out, "Member")

	out, _, code = f.run("teams")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Core")
}
