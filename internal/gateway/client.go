// Package gateway is the client side of the taskboard HTTP API. It is the
// remote data store as seen by the board, the form, the notifier and the
// views.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx answer. Message is the server's error text when the
// body carried one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

type Client struct {
	BaseURL string
	Bearer  string

	hc     *http.Client
	stream *http.Client
}

// New creates a client. timeout bounds plain requests; change streams are
// bounded only by their context.
func New(baseURL, bearer string, timeout time.Duration) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Bearer:  bearer,
		hc:      &http.Client{Timeout: timeout},
		stream:  &http.Client{},
	}
}

// NewTask is the body of a task insert.
type NewTask struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Status      model.Status   `json:"status,omitempty"`
	Priority    model.Priority `json:"priority,omitempty"`
	TeamID      *uuid.UUID     `json:"team_id,omitempty"`
	Tags        []string       `json:"tags"`
	DueDate     *time.Time     `json:"due_date,omitempty"`
}

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *Client) InsertTask(ctx context.Context, t NewTask) (*model.Task, error) {
	var created model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", t, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTaskStatus writes the status column of a single task.
func (c *Client) UpdateTaskStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	body := map[string]model.Status{"status": status}
	return c.do(ctx, http.MethodPatch, "/tasks/"+id.String(), body, nil)
}

func (c *Client) ListTeams(ctx context.Context) ([]model.Team, error) {
	var teams []model.Team
	if err := c.do(ctx, http.MethodGet, "/teams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *Client) GetTeam(ctx context.Context, id uuid.UUID) (*model.Team, error) {
	var team model.Team
	if err := c.do(ctx, http.MethodGet, "/teams/"+id.String(), nil, &team); err != nil {
		return nil, err
	}
	return &team, nil
}

func (c *Client) GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var p model.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles/"+id.String(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) UpdateProfileName(ctx context.Context, id uuid.UUID, fullName string) error {
	body := map[string]string{"full_name": fullName}
	return c.do(ctx, http.MethodPatch, "/profiles/"+id.String(), body, nil)
}

func (c *Client) GetRole(ctx context.Context, userID uuid.UUID) (model.Role, error) {
	var out struct {
		Role model.Role `json:"role"`
	}
	if err := c.do(ctx, http.MethodGet, "/roles/"+userID.String(), nil, &out); err != nil {
		return "", err
	}
	if out.Role == "" {
		return model.RoleMember, nil
	}
	return out.Role, nil
}

func (c *Client) DashboardCounts(ctx context.Context) (*model.DashboardCounts, error) {
	var counts model.DashboardCounts
	if err := c.do(ctx, http.MethodGet, "/dashboard", nil, &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return nil, err
		}
		rd = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.Bearer)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
