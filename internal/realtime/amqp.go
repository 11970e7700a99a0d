package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// AMQPBroker fans events out through a RabbitMQ fanout exchange. Every
// subscription gets its own exclusive, auto-deleted queue.
type AMQPBroker struct {
	conn     *amqp091.Connection
	exchange string
	log      *zap.Logger

	mu  sync.Mutex
	pub *amqp091.Channel
}

func NewAMQPBroker(url, exchange string, log *zap.Logger) (*AMQPBroker, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := declareExchange(ch, exchange); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &AMQPBroker{conn: conn, exchange: exchange, log: log, pub: ch}, nil
}

func declareExchange(ch *amqp091.Channel, name string) error {
	err := ch.ExchangeDeclare(
		name,
		"fanout",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

func (b *AMQPBroker) Publish(ctx context.Context, ev ChangeEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal change event: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pub.PublishWithContext(ctx, b.exchange, "", false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}

func (b *AMQPBroker) Subscribe(_ context.Context, f Filter) (*Subscription, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if err := declareExchange(ch, b.exchange); err != nil {
		_ = ch.Close()
		return nil, err
	}
	q, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "", b.exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	sub, out := NewSubscription(cancel)

	go func() {
		defer close(out)
		defer ch.Close()
		for {
			select {
			case <-runCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					b.log.Error("amqp delivery channel closed", zap.String("exchange", b.exchange))
					return
				}
				var ev ChangeEvent
				if err := json.Unmarshal(d.Body, &ev); err != nil {
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

func (b *AMQPBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pub != nil {
		_ = b.pub.Close()
	}
	return b.conn.Close()
}
