// Package queue implements named outbound job channels, each throttled by
// its own token-bucket limiter.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/aliskhannn/crm-notifier/internal/model"
)

// Channel names of the Telegram bot integration.
const (
	TelegramMessageQueue = "telegram-message-queue"
	TelegramCronQueue    = "telegram-cron-queue"
	TelegramUserQueue    = "telegram-user-queue"
	TelegramUploadQueue  = "telegram-upload-queue"
)

var (
	ErrUnknownChannel   = errors.New("unknown channel")
	ErrDuplicateChannel = errors.New("duplicate channel")
	ErrJobTypeRejected  = errors.New("job type not accepted by channel")
)

// Config describes one channel.
type Config struct {
	Name     string        `mapstructure:"name" json:"name"`
	Max      int           `mapstructure:"max" json:"max"`           // jobs started per Duration
	Duration time.Duration `mapstructure:"duration" json:"duration"` // limiter window
	Workers  int           `mapstructure:"workers" json:"workers"`   // consumers pulling from the channel
	Attempts int           `mapstructure:"attempts" json:"attempts"` // > 1 opts the channel into retries
	Types    []string      `mapstructure:"types" json:"types"`       // accepted job types, empty accepts any
}

// Accepts reports whether jobs of jobType may be published on the channel.
func (c Config) Accepts(jobType string) bool {
	if len(c.Types) == 0 {
		return true
	}

	for _, t := range c.Types {
		if t == jobType {
			return true
		}
	}

	return false
}

// DefaultConfigs returns the Telegram channels with their production limits.
func DefaultConfigs() []Config {
	return []Config{
		{Name: TelegramMessageQueue, Max: 1, Duration: 10 * time.Second, Workers: 1, Attempts: 1, Types: []string{model.JobSendMessage}},
		{Name: TelegramCronQueue, Max: 1, Duration: 5 * time.Second, Workers: 1, Attempts: 1, Types: []string{model.JobSendMessage}},
		{Name: TelegramUserQueue, Max: 1, Duration: 5 * time.Second, Workers: 1, Attempts: 1, Types: []string{model.JobInviteUser}},
		{Name: TelegramUploadQueue, Max: 1, Duration: 10 * time.Second, Workers: 1, Attempts: 1, Types: []string{model.JobSendDocument}},
	}
}

// Queue is a single channel and its limiter.
type Queue struct {
	cfg     Config
	limiter *Limiter
}

// Config returns the channel configuration.
func (q *Queue) Config() Config {
	return q.cfg
}

// Limiter returns the limiter shared by all consumers of the channel.
func (q *Queue) Limiter() *Limiter {
	return q.limiter
}

// Manager owns every channel and publishes jobs to the broker.
type Manager struct {
	broker Broker
	clock  Clock
	queues map[string]*Queue
}

// NewManager builds one queue per config on top of broker.
func NewManager(broker Broker, clock Clock, cfgs ...Config) (*Manager, error) {
	if clock == nil {
		clock = RealClock
	}

	m := &Manager{
		broker: broker,
		clock:  clock,
		queues: make(map[string]*Queue, len(cfgs)),
	}

	for _, cfg := range cfgs {
		if _, ok := m.queues[cfg.Name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateChannel, cfg.Name)
		}

		if cfg.Workers <= 0 {
			cfg.Workers = 1
		}

		if cfg.Attempts <= 0 {
			cfg.Attempts = 1
		}

		limiter, err := NewLimiter(cfg.Max, cfg.Duration, clock)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", cfg.Name, err)
		}

		m.queues[cfg.Name] = &Queue{cfg: cfg, limiter: limiter}
	}

	return m, nil
}

// Enqueue publishes a job on channel and returns without waiting for it
// to run.
func (m *Manager) Enqueue(ctx context.Context, channel, jobType string, payload any) (uuid.UUID, error) {
	q, ok := m.queues[channel]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}

	if !q.cfg.Accepts(jobType) {
		return uuid.Nil, fmt.Errorf("%w: %s on %s", ErrJobTypeRejected, jobType, channel)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal payload: %w", err)
	}

	job := model.Job{
		ID:         uuid.New(),
		Channel:    channel,
		Type:       jobType,
		Payload:    raw,
		EnqueuedAt: m.clock.Now(),
	}

	body, err := json.Marshal(job)
	if err != nil {
		return uuid.Nil, fmt.Errorf("marshal job: %w", err)
	}

	if err := m.broker.Publish(ctx, channel, body); err != nil {
		return uuid.Nil, fmt.Errorf("publish job to %s: %w", channel, err)
	}

	return job.ID, nil
}

// Queue returns the channel called name.
func (m *Manager) Queue(name string) (*Queue, bool) {
	q, ok := m.queues[name]
	return q, ok
}

// Queues returns every channel ordered by name.
func (m *Manager) Queues() []*Queue {
	out := make([]*Queue, 0, len(m.queues))
	for _, q := range m.queues {
		out = append(out, q)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].cfg.Name < out[j].cfg.Name })

	return out
}

// Broker returns the broker jobs are published to.
func (m *Manager) Broker() Broker {
	return m.broker
}

// Configs returns the configuration of every channel ordered by name.
func (m *Manager) Configs() []Config {
	qs := m.Queues()
	out := make([]Config, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.cfg)
	}

	return out
}

// Names returns every channel name ordered by name.
func (m *Manager) Names() []string {
	qs := m.Queues()
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.cfg.Name)
	}

	return out
}
