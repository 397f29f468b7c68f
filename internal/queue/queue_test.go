package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocks "github.com/aliskhannn/crm-notifier/internal/mocks/queue"
	"github.com/aliskhannn/crm-notifier/internal/model"
)

func TestNewManager_Defaults(t *testing.T) {
	m, err := NewManager(NewMemoryBroker(), nil, DefaultConfigs()...)
	require.NoError(t, err)

	queues := m.Queues()
	require.Len(t, queues, 4)

	q, ok := m.Queue(TelegramMessageQueue)
	require.True(t, ok)
	assert.Equal(t, 10*time.Second, q.Limiter().Interval())

	q, ok = m.Queue(TelegramCronQueue)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, q.Limiter().Interval())

	assert.Equal(t, []string{
		TelegramCronQueue,
		TelegramMessageQueue,
		TelegramUploadQueue,
		TelegramUserQueue,
	}, m.Names())
	assert.Len(t, m.Configs(), 4)
}

func TestNewManager_Invalid(t *testing.T) {
	_, err := NewManager(NewMemoryBroker(), nil, Config{Name: "a", Max: 0, Duration: time.Second})
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = NewManager(NewMemoryBroker(), nil,
		Config{Name: "a", Max: 1, Duration: time.Second},
		Config{Name: "a", Max: 1, Duration: time.Second},
	)
	assert.ErrorIs(t, err, ErrDuplicateChannel)
}

func TestNewManager_FillsWorkersAndAttempts(t *testing.T) {
	m, err := NewManager(NewMemoryBroker(), nil, Config{Name: "a", Max: 1, Duration: time.Second})
	require.NoError(t, err)

	q, _ := m.Queue("a")
	assert.Equal(t, 1, q.Config().Workers)
	assert.Equal(t, 1, q.Config().Attempts)
}

func TestManager_Enqueue(t *testing.T) {
	broker := NewMemoryBroker()
	clock := newFakeClock()
	m, err := NewManager(broker, clock, DefaultConfigs()...)
	require.NoError(t, err)

	id, err := m.Enqueue(context.Background(), TelegramMessageQueue, model.JobSendMessage, map[string]string{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, broker.Len(TelegramMessageQueue))
	assert.Equal(t, 0, broker.Len(TelegramCronQueue))

	ctx, cancel := context.WithCancel(context.Background())
	out := make(chan []byte, 1)
	go func() { _ = broker.Consume(ctx, TelegramMessageQueue, out) }()

	var job model.Job
	require.NoError(t, json.Unmarshal(<-out, &job))
	cancel()

	assert.Equal(t, id, job.ID)
	assert.Equal(t, "send_message", job.Type)
	assert.Equal(t, TelegramMessageQueue, job.Channel)
	assert.True(t, clock.Now().Equal(job.EnqueuedAt))
	assert.JSONEq(t, `{"text":"hi"}`, string(job.Payload))
}

func TestManager_EnqueueUnknownChannel(t *testing.T) {
	m, err := NewManager(NewMemoryBroker(), nil, DefaultConfigs()...)
	require.NoError(t, err)

	_, err = m.Enqueue(context.Background(), "sms-queue", "send", nil)
	assert.ErrorIs(t, err, ErrUnknownChannel)
}

func TestManager_EnqueueRejectsJobType(t *testing.T) {
	broker := NewMemoryBroker()
	m, err := NewManager(broker, nil, DefaultConfigs()...)
	require.NoError(t, err)

	_, err = m.Enqueue(context.Background(), TelegramUploadQueue, model.JobSendMessage, nil)
	assert.ErrorIs(t, err, ErrJobTypeRejected)
	assert.Zero(t, broker.Len(TelegramUploadQueue))
}

func TestConfig_Accepts(t *testing.T) {
	assert.True(t, Config{}.Accepts("anything"))
	assert.True(t, Config{Types: []string{"a", "b"}}.Accepts("b"))
	assert.False(t, Config{Types: []string{"a"}}.Accepts("b"))
}

func TestManager_EnqueuePublishError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	broker := mocks.NewMockBroker(ctrl)
	m, err := NewManager(broker, nil, DefaultConfigs()...)
	require.NoError(t, err)

	broker.EXPECT().Publish(gomock.Any(), TelegramUserQueue, gomock.Any()).Return(errors.New("connection reset"))

	_, err = m.Enqueue(context.Background(), TelegramUserQueue, model.JobInviteUser, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestMemoryBroker_FIFO(t *testing.T) {
	b := NewMemoryBroker()
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, b.Publish(context.Background(), "ch", []byte(s)))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan []byte)
	done := make(chan error, 1)
	go func() { done <- b.Consume(ctx, "ch", out) }()

	var got []string
	for i := 0; i < 3; i++ {
		got = append(got, string(<-out))
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)

	cancel()
	assert.NoError(t, <-done)
}

func TestMemoryBroker_Closed(t *testing.T) {
	b := NewMemoryBroker()
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Publish(context.Background(), "ch", []byte("x")), ErrBrokerClosed)
}
