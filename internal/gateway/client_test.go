package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/internal/gateway"
	"taskboard/internal/handler"
	"taskboard/internal/model"
	"taskboard/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newServer(t *testing.T, setup func(r *gin.Engine)) *gateway.Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return gateway.New(srv.URL, "test-token", 5*time.Second)
}

func TestClient_ListTasks(t *testing.T) {
	id := uuid.New()
	var gotAuth string
	client := newServer(t, func(r *gin.Engine) {
		r.GET("/tasks", func(c *gin.Context) {
			gotAuth = c.GetHeader("Authorization")
			c.JSON(http.StatusOK, []model.Task{{ID: id, Title: "Write docs", Status: model.StatusToday}})
		})
	})

	tasks, err := client.ListTasks(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
	require.Len(t, tasks, 1)
	assert.Equal(t, id, tasks[0].ID)
	assert.Equal(t, model.StatusToday, tasks[0].Status)
}

func TestClient_UpdateTaskStatus(t *testing.T) {
	id := uuid.New()
	var body map[string]string
	var gotID string
	client := newServer(t, func(r *gin.Engine) {
		r.PATCH("/tasks/:id", func(c *gin.Context) {
			gotID = c.Param("id")
			_ = c.ShouldBindJSON(&body)
			c.JSON(http.StatusOK, gin.H{})
		})
	})

	err := client.UpdateTaskStatus(context.Background(), id, model.StatusDone)

	require.NoError(t, err)
	assert.Equal(t, id.String(), gotID)
	assert.Equal(t, map[string]string{"status": "done"}, body)
}

func TestClient_Errors(t *testing.T) {
	client := newServer(t, func(r *gin.Engine) {
		r.GET("/teams/:id", func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
		})
		r.POST("/tasks", func(c *gin.Context) {
			c.String(http.StatusBadGateway, "upstream down")
		})
	})

	_, err := client.GetTeam(context.Background(), uuid.New())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrNotFound))
	assert.Equal(t, "Team not found", err.Error())

	_, err = client.InsertTask(context.Background(), gateway.NewTask{Title: "x"})
	var apiErr *gateway.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Empty(t, apiErr.Message)
	assert.False(t, errors.Is(err, gateway.ErrNotFound))
}

func TestClient_InsertTask(t *testing.T) {
	team := uuid.New()
	var got gateway.NewTask
	client := newServer(t, func(r *gin.Engine) {
		r.POST("/tasks", func(c *gin.Context) {
			_ = c.ShouldBindJSON(&got)
			c.JSON(http.StatusCreated, model.Task{ID: uuid.New(), Title: got.Title, Status: model.StatusBacklog})
		})
	})

	created, err := client.InsertTask(context.Background(), gateway.NewTask{
		Title:  "Ship it",
		TeamID: &team,
		Tags:   []string{"bug"},
	})

	require.NoError(t, err)
	assert.Equal(t, "Ship it", created.Title)
	assert.Equal(t, "Ship it", got.Title)
	assert.Equal(t, &team, got.TeamID)
	assert.Equal(t, []string{"bug"}, got.Tags)
}

func TestClient_GetRole(t *testing.T) {
	client := newServer(t, func(r *gin.Engine) {
		r.GET("/roles/:user_id", func(c *gin.Context) {
			c.JSON(http.StatusOK, handler.RoleResponse{UserID: c.Param("user_id"), Role: model.RoleAdmin, IsAdmin: true})
		})
	})

	role, err := client.GetRole(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)
}

func TestClient_Subscribe(t *testing.T) {
	broker := realtime.NewMemoryBroker(zap.NewNop())
	client := newServer(t, func(r *gin.Engine) {
		r.GET("/realtime/:table", handler.NewStreamHandler(broker, zap.NewNop()).Stream)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := client.Subscribe(ctx, "tasks", realtime.EventInsert)
	require.NoError(t, err)

	row, _ := json.Marshal(model.Task{Title: "Fresh"})
	require.NoError(t, broker.Publish(ctx, realtime.ChangeEvent{Table: "tasks", Type: realtime.EventInsert, New: row}))

	select {
	case ev := <-sub.Events():
		assert.Equal(t, realtime.EventInsert, ev.Type)
		var task model.Task
		require.NoError(t, ev.DecodeNew(&task))
		assert.Equal(t, "Fresh", task.Title)
	case <-ctx.Done():
		t.Fatal("no change event received")
	}

	require.NoError(t, sub.Close())
	for {
		select {
		case _, ok := <-sub.Events():
			if !ok {
				return
			}
		case <-ctx.Done():
			t.Fatal("events channel not closed after Close")
		}
	}
}

func TestClient_Subscribe_UnknownTable(t *testing.T) {
	client := newServer(t, func(r *gin.Engine) {
		r.GET("/realtime/:table", handler.NewStreamHandler(realtime.NewMemoryBroker(zap.NewNop()), zap.NewNop()).Stream)
	})

	_, err := client.Subscribe(context.Background(), "secrets", realtime.EventAll)

	assert.True(t, errors.Is(err, gateway.ErrNotFound))
}
