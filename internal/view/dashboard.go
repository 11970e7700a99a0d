package view

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/notice"
)

const msgDashboardFailed = "Failed to load dashboard data"

type DashboardGateway interface {
	DashboardCounts(ctx context.Context) (*model.DashboardCounts, error)
	GetRole(ctx context.Context, userID uuid.UUID) (model.Role, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

type StatCard struct {
	Title string
	Value int64
}

type Dashboard struct {
	Name    string
	IsAdmin bool
	Cards   []StatCard
}

func (d *Dashboard) Greeting() string {
	return fmt.Sprintf("Welcome back, %s!", d.Name)
}

// StatCards lays the counts out in display order. nil counts give zeros.
func StatCards(c *model.DashboardCounts) []StatCard {
	if c == nil {
		c = &model.DashboardCounts{}
	}
	return []StatCard{
		{Title: "Total Tasks", Value: c.TotalTasks},
		{Title: "Today", Value: c.ByStatus[model.StatusToday]},
		{Title: "In Review", Value: c.ByStatus[model.StatusReview]},
		{Title: "Completed", Value: c.ByStatus[model.StatusDone]},
		{Title: "Team Members", Value: c.TotalUsers},
		{Title: "Teams", Value: c.TotalTeams},
	}
}

// LoadDashboard always returns a renderable dashboard. When the counts cannot
// be read the cards stay at zero, the user is told and the error returned.
func LoadDashboard(ctx context.Context, gw DashboardGateway, userID uuid.UUID, notices notice.Sink, log *zap.Logger) (*Dashboard, error) {
	d := &Dashboard{Name: "User"}

	if p, err := gw.GetProfile(ctx, userID); err == nil && p.FullName != nil && *p.FullName != "" {
		d.Name = *p.FullName
	}
	if role, err := gw.GetRole(ctx, userID); err == nil {
		d.IsAdmin = role == model.RoleAdmin
	} else {
		log.Debug("role lookup", zap.Error(err))
	}

	counts, err := gw.DashboardCounts(ctx)
	if err != nil {
		log.Warn("load dashboard counts", zap.Error(err))
		notices.Error(msgDashboardFailed)
		d.Cards = StatCards(nil)
		return d, err
	}
	d.Cards = StatCards(counts)
	return d, nil
}

func RenderDashboard(w io.Writer, d *Dashboard) error {
	if _, err := fmt.Fprintln(w, d.Greeting()); err != nil {
		return err
	}
	if d.IsAdmin {
		fmt.Fprintln(w, "Role: Admin")
	}
	for _, c := range d.Cards {
		fmt.Fprintf(w, "  %-14s %d\n", c.Title, c.Value)
	}
	return nil
}
