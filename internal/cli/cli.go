// Package cli implements the board command: the board, dashboard and profile
// pages in a terminal.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"taskboard/internal/auth"
	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/gateway"
	"taskboard/internal/model"
	"taskboard/internal/notice"
	"taskboard/internal/notifier"
	"taskboard/internal/taskform"
	"taskboard/internal/view"
)

var (
	errTokenRequired = errors.New("BOARD_TOKEN is not set")
	errIDRequired    = errors.New("task id is required")
	errColumnNeeded  = errors.New("target column is required")
)

const usage = `Usage: board <command> [options]

Commands:
  list                     Tasks, newest first
  board                    Tasks by column
  move <task-id> <column>  Move a task (backlog|today|review|done)
  create <title>           Create a task
    -d, --description      Description text
    -s, --status           Status [default: backlog]
    -p, --priority         Priority (low|medium|high|urgent) [default: medium]
    --team                 Team id
    -t, --tags             Comma separated tags
    --due                  Due date YYYY-MM-DD
  teams                    Teams to pick from
  dashboard                Summary counts
  profile [--name NAME]    Show or rename your profile
  watch                    Follow the board and team assignments until interrupted`

const dueLayout = "Jan 2, 2006"

// lockedWriter serializes writes so a board redraw and a notice raised from
// another goroutine never interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type env struct {
	out     io.Writer
	errOut  io.Writer
	gw      *gateway.Client
	notices notice.Sink
	log     *zap.Logger
	userID  uuid.UUID
}

// Run executes one command and returns the process exit code.
func Run(ctx context.Context, out, errOut io.Writer, args []string, cfg *config.Config, log *zap.Logger) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprintln(out, usage)
		return 0
	}

	e, err := newEnv(out, errOut, cfg, log)
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		err = e.list(ctx)
	case "board":
		err = e.board(ctx)
	case "move":
		err = e.move(ctx, rest)
	case "create":
		err = e.create(ctx, rest)
	case "teams":
		err = e.teams(ctx)
	case "dashboard":
		err = e.dashboard(ctx)
	case "profile":
		err = e.profile(ctx, rest)
	case "watch":
		err = e.watch(ctx)
	default:
		fmt.Fprintf(errOut, "error: unknown command %q\n\n%s\n", cmd, usage)
		return 2
	}
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return 1
	}
	return 0
}

func newEnv(out, errOut io.Writer, cfg *config.Config, log *zap.Logger) (*env, error) {
	if cfg.Token == "" {
		return nil, errTokenRequired
	}
	sub, err := auth.Subject(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("token user id: %w", err)
	}
	lw := &lockedWriter{w: out}
	return &env{
		out:     lw,
		errOut:  errOut,
		gw:      gateway.New(cfg.APIURL, cfg.Token, cfg.HTTPTimeout),
		notices: notice.NewWriterSink(lw),
		log:     log,
		userID:  userID,
	}, nil
}

func (e *env) list(ctx context.Context) error {
	details, err := view.LoadTaskDetails(ctx, e.gw)
	if err != nil {
		e.notices.Error("Failed to load tasks")
		return err
	}
	return view.RenderTaskList(e.out, "Recent Tasks", view.TaskRows(details, time.Now()))
}

func (e *env) board(ctx context.Context) error {
	c := board.NewController(e.gw, e.notices, e.log)
	if err := c.Load(ctx); err != nil {
		return err
	}
	renderBoard(e.out, "", c.Store().Tasks())
	return nil
}

// renderBoard writes the columns in a single Write.
func renderBoard(w io.Writer, header string, tasks []model.Task) {
	var buf bytes.Buffer
	if header != "" {
		fmt.Fprintln(&buf, header)
	}
	buckets := board.Bucket(tasks)
	for _, col := range board.Columns {
		fmt.Fprintf(&buf, "%s (%d)\n", col.Title, len(buckets[col.ID]))
		for _, t := range buckets[col.ID] {
			line := fmt.Sprintf("  %s  %s [%s]", t.ID, t.Title, t.Priority)
			if len(t.Tags) > 0 {
				line += " #" + strings.Join(t.Tags, " #")
			}
			if t.PercentageComplete > 0 {
				line += fmt.Sprintf(" %d%%", t.PercentageComplete)
			}
			if t.DueDate != nil {
				line += " due " + t.DueDate.Format(dueLayout)
			}
			fmt.Fprintln(&buf, line)
		}
	}
	_, _ = w.Write(buf.Bytes())
}

func (e *env) move(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errIDRequired
	}
	if len(args) < 2 {
		return errColumnNeeded
	}
	taskID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid task id %q", args[0])
	}
	if _, ok := board.ColumnFor(args[1]); !ok {
		return fmt.Errorf("unknown column %q", args[1])
	}

	c := board.NewController(e.gw, e.notices, e.log)
	if err := c.Load(ctx); err != nil {
		return err
	}
	if _, ok := c.Store().Find(taskID); !ok {
		return fmt.Errorf("task %s not found", taskID)
	}
	c.BeginDrag(taskID)
	return c.EndDrag(ctx, taskID, args[1])
}

func (e *env) create(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	description := fs.StringP("description", "d", "", "Description text")
	status := fs.StringP("status", "s", string(model.StatusBacklog), "Status")
	priority := fs.StringP("priority", "p", string(model.PriorityMedium), "Priority")
	team := fs.String("team", "", "Team id")
	tags := fs.StringP("tags", "t", "", "Comma separated tags")
	due := fs.String("due", "", "Due date YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c := board.NewController(e.gw, e.notices, e.log)
	f := taskform.New(e.gw, e.notices, nil)
	f.Fields = taskform.Fields{
		Title:       strings.Join(fs.Args(), " "),
		Description: *description,
		Status:      model.Status(*status),
		Priority:    model.Priority(*priority),
		TeamID:      *team,
		Tags:        *tags,
		DueDate:     *due,
	}

	c.OpenForm()
	created, err := c.Create(ctx, f)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.out, created.ID)
	return nil
}

func (e *env) teams(ctx context.Context) error {
	f := taskform.New(e.gw, e.notices, nil)
	teams, err := f.Teams(ctx)
	if err != nil {
		return err
	}
	for _, t := range teams {
		fmt.Fprintf(e.out, "%s  %s\n", t.ID, t.Name)
	}
	return nil
}

func (e *env) dashboard(ctx context.Context) error {
	d, err := view.LoadDashboard(ctx, e.gw, e.userID, e.notices, e.log)
	if rerr := view.RenderDashboard(e.out, d); rerr != nil {
		return rerr
	}
	return err
}

func (e *env) profile(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("profile", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	name := fs.String("name", "", "New full name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := view.NewProfilePage(e.gw, e.notices, e.userID)
	if fs.Changed("name") {
		if err := p.Save(ctx, *name); err != nil {
			return err
		}
	} else if err := p.Load(ctx); err != nil {
		return err
	}
	return p.Render(e.out)
}

// watch prints the board after every change and announces tasks created for
// the user's team, until ctx is done.
func (e *env) watch(ctx context.Context) error {
	c := board.NewController(e.gw, e.notices, e.log)
	c.OnLoad(func(tasks []model.Task) {
		renderBoard(e.out, "--- "+time.Now().Format(time.TimeOnly), tasks)
	})
	if err := c.Load(ctx); err != nil {
		return err
	}
	if err := c.Subscribe(ctx); err != nil {
		return err
	}
	defer c.Close()

	n := notifier.New(e.gw, e.notices, e.userID, e.log)
	if err := n.Start(ctx); err != nil {
		return err
	}
	defer n.Stop()

	<-ctx.Done()
	return nil
}
