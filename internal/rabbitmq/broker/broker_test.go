package broker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aliskhannn/crm-notifier/internal/queue"
)

var _ queue.Broker = (*Broker)(nil)

func TestDLQName(t *testing.T) {
	assert.Equal(t, "telegram-user-queue.dlq", DLQName(queue.TelegramUserQueue))
}

func TestBroker_UndeclaredChannel(t *testing.T) {
	b := &Broker{queues: map[string]string{queue.TelegramCronQueue: queue.TelegramCronQueue}}

	err := b.Publish(context.Background(), "sms-queue", []byte("{}"))
	assert.ErrorIs(t, err, ErrUndeclaredChannel)

	err = b.Consume(context.Background(), "sms-queue", make(chan []byte))
	assert.ErrorIs(t, err, ErrUndeclaredChannel)
}

func TestBroker_PublishCancelled(t *testing.T) {
	b := &Broker{queues: map[string]string{queue.TelegramCronQueue: queue.TelegramCronQueue}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// отменённый контекст не доходит до паблишера
	err := b.Publish(ctx, queue.TelegramCronQueue, []byte("{}"))
	assert.ErrorIs(t, err, context.Canceled)
}
