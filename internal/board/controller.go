// Package board keeps the kanban board's local task collection in step with
// the remote store: optimistic drag-and-drop moves, full reloads on failure
// and on every realtime change.
package board

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskboard/internal/model"
	"taskboard/internal/notice"
	"taskboard/internal/realtime"
	"taskboard/internal/taskform"
)

const tasksTable = "tasks"

const (
	msgLoadFailed = "Failed to load tasks"
	msgMoved      = "Task moved successfully"
	msgMoveFailed = "Failed to move task"
	msgStreamLost = "Lost connection to live updates"
)

const defaultRetryDelay = 2 * time.Second

var ErrAlreadySubscribed = errors.New("board is already subscribed to changes")

type Gateway interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	UpdateTaskStatus(ctx context.Context, id uuid.UUID, status model.Status) error
	Subscribe(ctx context.Context, table string, eventType realtime.EventType) (*realtime.Subscription, error)
}

type Controller struct {
	gw      Gateway
	notices notice.Sink
	log     *zap.Logger
	store   *Store

	mu       sync.Mutex
	activeID uuid.UUID
	formOpen bool
	sub      *realtime.Subscription
	cancel   context.CancelFunc
	done     chan struct{}
	onLoad   func([]model.Task)

	retryDelay time.Duration
}

func NewController(gw Gateway, notices notice.Sink, log *zap.Logger) *Controller {
	return &Controller{gw: gw, notices: notices, log: log, store: NewStore(), retryDelay: defaultRetryDelay}
}

// SetRetryDelay sets the pause before resubscribing after the change stream
// ends.
func (c *Controller) SetRetryDelay(d time.Duration) {
	c.mu.Lock()
	c.retryDelay = d
	c.mu.Unlock()
}

func (c *Controller) Store() *Store {
	return c.store
}

// Load replaces the collection with all tasks, newest first. On failure the
// collection is emptied and the user is told.
func (c *Controller) Load(ctx context.Context) error {
	tasks, err := c.gw.ListTasks(ctx)
	if err != nil {
		if ctx.Err() != nil {
			// the board went away; drop the response
			return ctx.Err()
		}
		c.log.Warn("load tasks", zap.Error(err))
		c.store.Reset()
		c.notices.Error(msgLoadFailed)
		return err
	}
	c.store.Replace(tasks)

	c.mu.Lock()
	fn := c.onLoad
	c.mu.Unlock()
	if fn != nil {
		fn(c.store.Tasks())
	}
	return nil
}

// OnLoad registers fn to run after every successful load with the new
// snapshot.
func (c *Controller) OnLoad(fn func([]model.Task)) {
	c.mu.Lock()
	c.onLoad = fn
	c.mu.Unlock()
}

func (c *Controller) BeginDrag(taskID uuid.UUID) {
	c.mu.Lock()
	c.activeID = taskID
	c.mu.Unlock()
}

// ActiveTask is the task currently being dragged, if any.
func (c *Controller) ActiveTask() (model.Task, bool) {
	c.mu.Lock()
	id := c.activeID
	c.mu.Unlock()
	if id == uuid.Nil {
		return model.Task{}, false
	}
	return c.store.Find(id)
}

// EndDrag drops a task on the column with the given id. Drops outside a
// column, onto the task's own column or onto an unknown column do nothing.
// Otherwise the local copy moves at once and a single status update follows;
// if it fails the collection is reloaded, which undoes the move.
func (c *Controller) EndDrag(ctx context.Context, taskID uuid.UUID, targetColumnID string) error {
	c.mu.Lock()
	c.activeID = uuid.Nil
	c.mu.Unlock()

	if targetColumnID == "" {
		return nil
	}
	task, ok := c.store.Find(taskID)
	if !ok {
		return nil
	}
	target := model.Status(targetColumnID)
	if task.Status == target || !target.Valid() {
		return nil
	}

	c.store.PatchStatus(taskID, target)

	if err := c.gw.UpdateTaskStatus(ctx, taskID, target); err != nil {
		c.log.Warn("move task",
			zap.String("task_id", taskID.String()),
			zap.String("from", string(task.Status)),
			zap.String("to", string(target)),
			zap.Error(err),
		)
		c.notices.Error(msgMoveFailed)
		if lerr := c.Load(ctx); lerr != nil {
			return errors.Join(err, lerr)
		}
		return err
	}
	c.notices.Success(msgMoved)
	return nil
}

func (c *Controller) OpenForm() {
	c.mu.Lock()
	c.formOpen = true
	c.mu.Unlock()
}

func (c *Controller) FormOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.formOpen
}

// Create submits the form. On success the form is closed and the board
// reloaded; on failure the form stays open with its fields.
func (c *Controller) Create(ctx context.Context, f *taskform.Form) (*model.Task, error) {
	created, err := f.Submit(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.formOpen = false
	c.mu.Unlock()

	if err := c.Load(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// Subscribe reloads the board on every insert, update or delete on tasks
// until Close is called. When the stream ends on its own the user is told,
// and the board resubscribes after a pause and reloads to catch up.
func (c *Controller) Subscribe(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub != nil {
		return ErrAlreadySubscribed
	}

	ctx, cancel := context.WithCancel(ctx)
	sub, err := c.gw.Subscribe(ctx, tasksTable, realtime.EventAll)
	if err != nil {
		cancel()
		return err
	}
	done := make(chan struct{})
	c.sub, c.cancel, c.done = sub, cancel, done

	go func() {
		defer close(done)
		for {
			for ev := range sub.Events() {
				c.log.Debug("task change", zap.String("type", string(ev.Type)))
				if err := c.Load(ctx); err != nil && ctx.Err() != nil {
					return
				}
			}
			_ = sub.Close()
			if ctx.Err() != nil {
				return
			}

			c.log.Warn("task change stream ended, resubscribing")
			c.notices.Error(msgStreamLost)
			if sub = c.resubscribe(ctx); sub == nil {
				return
			}
			_ = c.Load(ctx)
		}
	}()
	return nil
}

// resubscribe retries until a new subscription is open or ctx is done, in
// which case it returns nil.
func (c *Controller) resubscribe(ctx context.Context) *realtime.Subscription {
	c.mu.Lock()
	delay := c.retryDelay
	c.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		sub, err := c.gw.Subscribe(ctx, tasksTable, realtime.EventAll)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Warn("resubscribe to task changes", zap.Error(err))
			continue
		}

		c.mu.Lock()
		if ctx.Err() != nil {
			c.mu.Unlock()
			_ = sub.Close()
			return nil
		}
		c.sub = sub
		c.mu.Unlock()
		return sub
	}
}

// Close releases the change subscription and waits for the reload loop to
// finish. It is a no-op when not subscribed.
func (c *Controller) Close() error {
	c.mu.Lock()
	sub, cancel, done := c.sub, c.cancel, c.done
	c.sub, c.cancel, c.done = nil, nil, nil
	if cancel != nil {
		// under the lock so resubscribe never installs a stream after this
		cancel()
	}
	c.mu.Unlock()

	if sub == nil {
		return nil
	}
	err := sub.Close()
	<-done
	return err
}
