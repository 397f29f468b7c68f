// Package broker carries outbound jobs over RabbitMQ.
package broker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wb-go/wbf/rabbitmq"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

const contentType = "application/json"

var ErrUndeclaredChannel = errors.New("channel not declared on broker")

// Broker routes every job channel to its own durable queue bound to a
// direct exchange with routing key = channel name. Rejected messages are
// dead-lettered to <channel>.dlq.
type Broker struct {
	ch        *rabbitmq.Channel
	exchange  string
	publisher *rabbitmq.Publisher
	strategy  retry.Strategy

	mu     sync.Mutex
	queues map[string]string // channel -> queue name
}

// DLQName returns the dead-letter queue of channel.
func DLQName(channel string) string {
	return channel + ".dlq"
}

// New declares the exchange and one queue per channel.
func New(ch *rabbitmq.Channel, exchangeName string, channels []string, strategy retry.Strategy) (*Broker, error) {
	exchange := rabbitmq.NewExchange(exchangeName, "direct")
	if err := exchange.BindToChannel(ch); err != nil {
		return nil, fmt.Errorf("failed to bind to exchange: %w", err)
	}

	b := &Broker{
		ch:        ch,
		exchange:  exchange.Name(),
		publisher: rabbitmq.NewPublisher(ch, exchange.Name()),
		strategy:  strategy,
		queues:    make(map[string]string, len(channels)),
	}

	for _, name := range channels {
		if err := b.declare(name); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (b *Broker) declare(channel string) error {
	qm := rabbitmq.NewQueueManager(b.ch)

	if _, err := qm.DeclareQueue(DLQName(channel), rabbitmq.QueueConfig{Durable: true}); err != nil {
		return fmt.Errorf("failed to declare DLQ for %s: %w", channel, err)
	}

	args := map[string]interface{}{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": DLQName(channel),
	}

	q, err := qm.DeclareQueue(channel, rabbitmq.QueueConfig{
		Durable: true,
		Args:    args,
	})
	if err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", channel, err)
	}

	if err := b.ch.QueueBind(q.Name, channel, b.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind the exchange to %s: %w", channel, err)
	}

	b.mu.Lock()
	b.queues[channel] = q.Name
	b.mu.Unlock()

	return nil
}

func (b *Broker) queueName(channel string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	name, ok := b.queues[channel]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUndeclaredChannel, channel)
	}

	return name, nil
}

// Publish sends body to the queue of channel.
func (b *Broker) Publish(ctx context.Context, channel string, body []byte) error {
	if _, err := b.queueName(channel); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := b.publisher.PublishWithRetry(body, channel, contentType, b.strategy); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", channel, err)
	}

	return nil
}

// Consume forwards bodies of channel to out until ctx is done. A body
// received but not yet handed to out when ctx ends is published again.
func (b *Broker) Consume(ctx context.Context, channel string, out chan<- []byte) error {
	name, err := b.queueName(channel)
	if err != nil {
		return err
	}

	consumer := rabbitmq.NewConsumer(b.ch, rabbitmq.NewConsumerConfig(name))
	msgChan := make(chan []byte)
	errChan := make(chan error, 1)

	go func() {
		errChan <- consumer.ConsumeWithRetry(msgChan, b.strategy)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errChan:
			if err != nil {
				return fmt.Errorf("failed to consume %s: %w", channel, err)
			}
			return nil
		case body := <-msgChan:
			select {
			case out <- body:
			case <-ctx.Done():
				if err := b.publisher.PublishWithRetry(body, channel, contentType, b.strategy); err != nil {
					zlog.Logger.Error().Err(err).Str("channel", channel).Msg("failed to return job to queue")
				}
				return nil
			}
		}
	}
}
