package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/notice"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type countingWriter struct {
	bytes.Buffer
	writes int
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.writes++
	return w.Buffer.Write(p)
}

func boardTasks() []model.Task {
	due := time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC)
	return []model.Task{
		{ID: uuid.New(), Title: "Ship", Status: model.StatusReview, Priority: model.PriorityHigh, DueDate: &due},
		{ID: uuid.New(), Title: "Plan", Status: model.StatusBacklog, Priority: model.PriorityLow},
	}
}

func TestRenderBoard_SingleWrite(t *testing.T) {
	var w countingWriter
	renderBoard(&w, "--- 10:00:00", boardTasks())

	assert.Equal(t, 1, w.writes)
	out := w.String()
	assert.True(t, strings.HasPrefix(out, "--- 10:00:00\nBacklog (1)\n"))
	assert.Contains(t, out, "Ship [high] due Mar 4, 2026")
	assert.NotContains(t, out, "Plan [low] due")
}

func TestLockedWriter_RedrawsAndNoticesDoNotInterleave(t *testing.T) {
	tasks := boardTasks()
	var want bytes.Buffer
	renderBoard(&want, "--- redraw", tasks)

	var buf bytes.Buffer
	lw := &lockedWriter{w: &buf}
	sink := notice.NewWriterSink(lw)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			renderBoard(lw, "--- redraw", tasks)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			sink.Success("New Task Assigned: Ship")
		}
	}()
	wg.Wait()

	out := buf.String()
	assert.Equal(t, 50, strings.Count(out, want.String()))
	assert.Equal(t, 50, strings.Count(out, "[ok] New Task Assigned: Ship\n"))
}
