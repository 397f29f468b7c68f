package queue

import (
	"context"
	"errors"
	"sync"
)

// Broker moves serialized jobs from producers to channel consumers.
//
//go:generate mockgen -source=broker.go -destination=../mocks/queue/mock.go -package=mocks
type Broker interface {
	Publish(ctx context.Context, channel string, body []byte) error
	Consume(ctx context.Context, channel string, out chan<- []byte) error
}

var ErrBrokerClosed = errors.New("broker closed")

// MemoryBroker is an unbounded in-process broker. Publish never blocks.
type MemoryBroker struct {
	mu     sync.Mutex
	queues map[string]*memQueue
	closed bool
}

type memQueue struct {
	mu     sync.Mutex
	items  [][]byte
	signal chan struct{}
}

// NewMemoryBroker creates an empty in-process broker.
func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{queues: make(map[string]*memQueue)}
}

func (b *MemoryBroker) queue(channel string) (*memQueue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBrokerClosed
	}

	q, ok := b.queues[channel]
	if !ok {
		q = &memQueue{signal: make(chan struct{}, 1)}
		b.queues[channel] = q
	}

	return q, nil
}

// Publish appends body to the channel.
func (b *MemoryBroker) Publish(_ context.Context, channel string, body []byte) error {
	q, err := b.queue(channel)
	if err != nil {
		return err
	}

	q.mu.Lock()
	q.items = append(q.items, body)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}

	return nil
}

// Consume delivers bodies of channel to out until ctx is done.
func (b *MemoryBroker) Consume(ctx context.Context, channel string, out chan<- []byte) error {
	q, err := b.queue(channel)
	if err != nil {
		return err
	}

	for {
		body, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-q.signal:
				continue
			}
		}

		select {
		case out <- body:
		case <-ctx.Done():
			q.pushFront(body)
			return nil
		}
	}
}

// Len returns the number of undelivered bodies on channel.
func (b *MemoryBroker) Len(channel string) int {
	q, err := b.queue(channel)
	if err != nil {
		return 0
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Close rejects further publishing.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()

	return nil
}

func (q *memQueue) pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, false
	}

	body := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]

	if len(q.items) > 0 {
		select {
		case q.signal <- struct{}{}:
		default:
		}
	}

	return body, true
}

func (q *memQueue) pushFront(body []byte) {
	q.mu.Lock()
	q.items = append([][]byte{body}, q.items...)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}
