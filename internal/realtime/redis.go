package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisBroker fans events out through a Redis pub/sub channel so that every
// server instance sees changes picked up by any listener.
type RedisBroker struct {
	rc      *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisBroker(rc *redis.Client, channel string, log *zap.Logger) *RedisBroker {
	return &RedisBroker{rc: rc, channel: channel, log: log}
}

func (b *RedisBroker) Publish(ctx context.Context, ev ChangeEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	return b.rc.Publish(ctx, b.channel, data).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, f Filter) (*Subscription, error) {
	ps := b.rc.Subscribe(ctx, b.channel)
	// wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sub, out := NewSubscription(cancel)

	go func() {
		defer close(out)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-runCtx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					b.log.Error("redis pubsub channel closed", zap.String("channel", b.channel))
					return
				}
				var ev ChangeEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.Error("unable to parse change event", zap.Error(err))
					continue
				}
				if !f.Matches(ev) {
					continue
				}
				select {
				case out <- ev:
				case <-runCtx.Done():
					return
				}
			}
		}
	}()
	return sub, nil
}

// Close closes the underlying client.
func (b *RedisBroker) Close() error {
	return b.rc.Close()
}
