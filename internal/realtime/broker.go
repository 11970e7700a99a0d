package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"taskboard/internal/metrics"
)

// Broker fans change events out to subscribers.
type Broker interface {
	Publish(ctx context.Context, ev ChangeEvent) error
	Subscribe(ctx context.Context, f Filter) (*Subscription, error)
	Close() error
}

type memorySub struct {
	filter Filter
	ch     chan<- ChangeEvent
}

// MemoryBroker delivers events within a single process.
type MemoryBroker struct {
	log *zap.Logger

	mu     sync.Mutex
	subs   map[*Subscription]memorySub
	closed bool
}

func NewMemoryBroker(log *zap.Logger) *MemoryBroker {
	return &MemoryBroker{log: log, subs: make(map[*Subscription]memorySub)}
}

func (b *MemoryBroker) Publish(_ context.Context, ev ChangeEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ms := range b.subs {
		if !ms.filter.Matches(ev) {
			continue
		}
		select {
		case ms.ch <- ev:
		default:
			metrics.ChangeEventsDropped.Inc()
			b.log.Warn("subscriber not keeping up, dropping change event",
				zap.String("table", ev.Table), zap.String("type", string(ev.Type)))
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(_ context.Context, f Filter) (*Subscription, error) {
	var sub *Subscription
	sub, ch := NewSubscription(func() { b.unsubscribe(sub) })

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return sub, nil
	}
	b.subs[sub] = memorySub{filter: f, ch: ch}
	return sub, nil
}

func (b *MemoryBroker) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ms, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(ms.ch)
	}
}

// Close ends every live subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub, ms := range b.subs {
		delete(b.subs, sub)
		close(ms.ch)
	}
	b.closed = true
	return nil
}
