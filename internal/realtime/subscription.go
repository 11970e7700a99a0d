package realtime

import (
	"sync"
)

const subscriptionBuffer = 64

// Subscription is a stream of change events released with Close. The events
// channel is closed once the subscription is torn down.
type Subscription struct {
	events chan ChangeEvent
	stop   func()
	once   sync.Once
}

// NewSubscription returns a subscription whose producer owns the returned
// channel: it sends on it and closes it when stop has been called.
func NewSubscription(stop func()) (*Subscription, chan<- ChangeEvent) {
	ch := make(chan ChangeEvent, subscriptionBuffer)
	return &Subscription{events: ch, stop: stop}, ch
}

func (s *Subscription) Events() <-chan ChangeEvent {
	return s.events
}

// Close releases the subscription. It is safe to call more than once.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		if s.stop != nil {
			s.stop()
		}
	})
	return nil
}
