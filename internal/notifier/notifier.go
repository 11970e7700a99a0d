// Package notifier tells the user when a task is created for their team.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/notice"
	"taskboard/internal/realtime"
)

var ErrStarted = errors.New("notifier already started")

const (
	tasksTable        = "tasks"
	msgStreamLost     = "Lost connection to live updates"
	defaultRetryDelay = 2 * time.Second
)

type Gateway interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	Subscribe(ctx context.Context, table string, eventType realtime.EventType) (*realtime.Subscription, error)
}

// Notifier watches task inserts and raises a notice for each one whose team
// is the user's team. The team is read once at Start and kept until Stop; a
// team change made meanwhile is not picked up.
type Notifier struct {
	gw      Gateway
	notices notice.Sink
	log     *zap.Logger
	userID  uuid.UUID

	mu     sync.Mutex
	teamID *uuid.UUID
	sub    *realtime.Subscription
	quit   chan struct{}
	done   chan struct{}

	retryDelay time.Duration
}

func New(gw Gateway, notices notice.Sink, userID uuid.UUID, log *zap.Logger) *Notifier {
	return &Notifier{gw: gw, notices: notices, userID: userID, log: log, retryDelay: defaultRetryDelay}
}

// SetRetryDelay sets the pause before resubscribing after the insert stream
// ends.
func (n *Notifier) SetRetryDelay(d time.Duration) {
	n.mu.Lock()
	n.retryDelay = d
	n.mu.Unlock()
}

func (n *Notifier) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sub != nil {
		return ErrStarted
	}

	var teamID *uuid.UUID
	profile, err := n.gw.GetProfile(ctx, n.userID)
	if err != nil {
		// no team known: nothing will match
		n.log.Warn("resolve user team", zap.String("user_id", n.userID.String()), zap.Error(err))
	} else {
		teamID = profile.TeamID
	}

	sub, err := n.gw.Subscribe(ctx, tasksTable, realtime.EventInsert)
	if err != nil {
		return err
	}
	quit := make(chan struct{})
	done := make(chan struct{})
	n.teamID, n.sub, n.quit, n.done = teamID, sub, quit, done

	go func() {
		defer close(done)
		for {
			for ev := range sub.Events() {
				n.handle(teamID, ev)
			}
			_ = sub.Close()
			if n.stopped(ctx, quit) {
				return
			}

			n.log.Warn("task insert stream ended, resubscribing")
			n.notices.Error(msgStreamLost)
			if sub = n.resubscribe(ctx, quit); sub == nil {
				return
			}
		}
	}()
	return nil
}

func (n *Notifier) stopped(ctx context.Context, quit <-chan struct{}) bool {
	select {
	case <-quit:
		return true
	default:
		return ctx.Err() != nil
	}
}

// resubscribe retries until a new subscription is open. It returns nil once
// Stop is called or ctx is done.
func (n *Notifier) resubscribe(ctx context.Context, quit <-chan struct{}) *realtime.Subscription {
	n.mu.Lock()
	delay := n.retryDelay
	n.mu.Unlock()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		sub, err := n.gw.Subscribe(ctx, tasksTable, realtime.EventInsert)
		if err != nil {
			if n.stopped(ctx, quit) {
				return nil
			}
			n.log.Warn("resubscribe to task inserts", zap.Error(err))
			continue
		}

		n.mu.Lock()
		if n.stopped(ctx, quit) {
			n.mu.Unlock()
			_ = sub.Close()
			return nil
		}
		n.sub = sub
		n.mu.Unlock()
		return sub
	}
}

func (n *Notifier) handle(teamID *uuid.UUID, ev realtime.ChangeEvent) {
	if ev.Type != realtime.EventInsert {
		return
	}
	var task model.Task
	if err := ev.DecodeNew(&task); err != nil {
		n.log.Debug("skip change without task image", zap.Error(err))
		return
	}
	if !Matches(&task, teamID) {
		return
	}
	n.notices.Success(fmt.Sprintf("New Task Assigned: %s", task.Title))
}

// Matches reports whether a new task belongs to the given team. Tasks
// without a team never match.
func Matches(task *model.Task, teamID *uuid.UUID) bool {
	return task.TeamID != nil && teamID != nil && *task.TeamID == *teamID
}

// TeamID is the team resolved at Start.
func (n *Notifier) TeamID() *uuid.UUID {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.teamID
}

// Stop releases the subscription and waits for pending notices.
func (n *Notifier) Stop() error {
	n.mu.Lock()
	sub, quit, done := n.sub, n.quit, n.done
	n.sub, n.quit, n.done = nil, nil, nil
	if quit != nil {
		close(quit)
	}
	n.mu.Unlock()

	if sub == nil {
		return nil
	}
	err := sub.Close()
	<-done
	return err
}
