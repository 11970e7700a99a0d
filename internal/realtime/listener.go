package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskboard/internal/metrics"
)

// NotifyChannel is the channel the notify_row_change trigger raises on.
const NotifyChannel = "row_changes"

// Listener relays PostgreSQL notifications raised by the notify_row_change
// trigger to a Broker.
type Listener struct {
	dsn     string
	channel string
	broker  Broker
	log     *zap.Logger
	retry   time.Duration
}

func NewListener(dsn string, broker Broker, log *zap.Logger) *Listener {
	return &Listener{dsn: dsn, channel: NotifyChannel, broker: broker, log: log, retry: time.Second}
}

// Run listens until ctx is cancelled, reconnecting after connection loss.
func (l *Listener) Run(ctx context.Context) {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return
		}
		l.log.Error("change listener disconnected, reconnecting", zap.Error(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := pgx.Connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.log.Info("listening for row changes", zap.String("channel", l.channel))

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if err := l.relay(ctx, n.Payload); err != nil {
			l.log.Error("relay change event", zap.Error(err))
		}
	}
}

func (l *Listener) relay(ctx context.Context, payload string) error {
	var ev ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return fmt.Errorf("decode notification: %w", err)
	}
	if ev.Table == "" || ev.Type == "" {
		return fmt.Errorf("notification without table or type: %q", payload)
	}
	if err := l.broker.Publish(ctx, ev); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	metrics.IncrementChangeRelayed(ev.Table, string(ev.Type))
	l.log.Debug("relayed change event", zap.String("table", ev.Table), zap.String("type", string(ev.Type)))
	return nil
}
