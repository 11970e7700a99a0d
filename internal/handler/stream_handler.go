package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskboard/internal/metrics"
	"taskboard/internal/realtime"
)

// Subscriber opens change subscriptions; realtime.Broker satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, f realtime.Filter) (*realtime.Subscription, error)
}

// SSE event names written on the change stream
const (
	EventReady  = "ready"
	EventChange = "change"
	EventPing   = "ping"
)

var streamTables = map[string]bool{
	"tasks":    true,
	"teams":    true,
	"profiles": true,
}

type StreamHandler struct {
	broker    Subscriber
	log       *zap.Logger
	heartbeat time.Duration
}

func NewStreamHandler(broker Subscriber, log *zap.Logger) *StreamHandler {
	return &StreamHandler{broker: broker, log: log, heartbeat: 15 * time.Second}
}

// Stream serves row change events for one table as server-sent events. The
// first event is "ready", written once the subscription is live.
func (h *StreamHandler) Stream(c *gin.Context) {
	table := c.Param("table")
	if !streamTables[table] {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown table"})
		return
	}
	eventType, err := realtime.ParseEventType(c.Query("event"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	sub, err := h.broker.Subscribe(ctx, realtime.Filter{Table: table, Type: eventType})
	if err != nil {
		h.log.Error("subscribe change stream", zap.String("table", table), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to subscribe"})
		return
	}
	defer sub.Close()

	metrics.OpenStreams.Inc()
	defer metrics.OpenStreams.Dec()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent(EventReady, gin.H{"table": table, "event": eventType})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			c.SSEvent(EventPing, time.Now().Unix())
			return true
		case ev, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(EventChange, ev)
			return true
		}
	})
}
