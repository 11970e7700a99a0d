// Package view turns remote reads into the rows, cards and labels shown on
// the dashboard, task list and profile pages, and renders them as text.
package view

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"taskboard/internal/model"
)

var StatusColors = map[model.Status]string{
	model.StatusBacklog: "gray",
	model.StatusToday:   "blue",
	model.StatusReview:  "amber",
	model.StatusDone:    "green",
}

var PriorityColors = map[model.Priority]string{
	model.PriorityLow:    "slate",
	model.PriorityMedium: "blue",
	model.PriorityHigh:   "amber",
	model.PriorityUrgent: "red",
}

const noTasks = "No tasks found"

// TaskDetail is a task joined with its team and assignee, either of which
// may be missing.
type TaskDetail struct {
	model.Task
	Team     *model.Team
	Assignee *model.Profile
}

type TaskRow struct {
	ID            uuid.UUID
	Title         string
	Priority      string
	PriorityColor string
	Status        string
	StatusColor   string
	Team          string
	Assignee      string
	Created       string
}

type TaskListGateway interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	ListTeams(ctx context.Context) ([]model.Team, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
}

// LoadTaskDetails reads tasks and resolves their teams and assignees. A team
// or assignee that cannot be read is left empty.
func LoadTaskDetails(ctx context.Context, gw TaskListGateway) ([]TaskDetail, error) {
	tasks, err := gw.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	teams := map[uuid.UUID]*model.Team{}
	if list, err := gw.ListTeams(ctx); err == nil {
		for i := range list {
			teams[list[i].ID] = &list[i]
		}
	}
	profiles := map[uuid.UUID]*model.Profile{}

	details := make([]TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		d := TaskDetail{Task: t}
		if t.TeamID != nil {
			d.Team = teams[*t.TeamID]
		}
		if t.AssigneeID != nil {
			p, seen := profiles[*t.AssigneeID]
			if !seen {
				p, _ = gw.GetProfile(ctx, *t.AssigneeID)
				profiles[*t.AssigneeID] = p
			}
			d.Assignee = p
		}
		details = append(details, d)
	}
	return details, nil
}

// TaskRows derives the display fields. now anchors the relative times.
func TaskRows(details []TaskDetail, now time.Time) []TaskRow {
	rows := make([]TaskRow, 0, len(details))
	for _, d := range details {
		row := TaskRow{
			ID:            d.ID,
			Title:         d.Title,
			Priority:      string(d.Priority),
			PriorityColor: PriorityColors[d.Priority],
			Status:        string(d.Status),
			StatusColor:   StatusColors[d.Status],
			Created:       humanize.RelTime(d.CreatedAt, now, "ago", "from now"),
		}
		if d.Team != nil {
			row.Team = d.Team.Name
		}
		if d.Assignee != nil {
			row.Assignee = d.Assignee.DisplayName()
		}
		rows = append(rows, row)
	}
	return rows
}

func RenderTaskList(w io.Writer, title string, rows []TaskRow) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, noTasks)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRIORITY\tSTATUS\tTEAM\tASSIGNEE\tCREATED")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Title, r.Priority, r.Status, dash(r.Team), dash(r.Assignee), r.Created)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
