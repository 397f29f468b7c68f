package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/crm-notifier/internal/metrics"
	"github.com/aliskhannn/crm-notifier/internal/model"
	"github.com/aliskhannn/crm-notifier/internal/queue"
)

//go:generate mockgen -source=pool.go -destination=../mocks/worker/mock.go -package=mocks
type jobHandler interface {
	HandleJob(ctx context.Context, job model.Job) error
}

type errorReporter interface {
	Report(job model.Job, err error)
}

// LogReporter reports failed jobs to the service log.
type LogReporter struct{}

func (LogReporter) Report(job model.Job, err error) {
	zlog.Logger.Error().
		Err(err).
		Str("job_id", job.ID.String()).
		Str("channel", job.Channel).
		Str("type", job.Type).
		Int("attempt", job.Attempt).
		Msg("outbound job failed")
}

// Pool runs the consumers of every channel of a queue manager. Each
// consumer waits on its channel limiter before starting a job.
type Pool struct {
	manager  *queue.Manager
	handler  jobHandler
	reporter errorReporter
	strategy retry.Strategy
}

func NewPool(m *queue.Manager, h jobHandler, r errorReporter, strategy retry.Strategy) *Pool {
	if r == nil {
		r = LogReporter{}
	}

	return &Pool{
		manager:  m,
		handler:  h,
		reporter: r,
		strategy: strategy,
	}
}

// Run blocks until ctx is cancelled and every worker has returned.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup
	broker := p.manager.Broker()
	pending := make(map[string]chan []byte)

	for _, q := range p.manager.Queues() {
		cfg := q.Config()
		msgChan := make(chan []byte, cfg.Workers)
		pending[cfg.Name] = msgChan

		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := broker.Consume(ctx, cfg.Name, msgChan); err != nil {
				zlog.Logger.Error().Err(err).Str("channel", cfg.Name).Msg("failed to consume jobs")
			}
		}()

		wg.Add(cfg.Workers)
		for i := 0; i < cfg.Workers; i++ {
			go func(id int) {
				defer wg.Done()

				zlog.Logger.Info().Str("channel", cfg.Name).Int("worker", id).Msg("worker started")

				for {
					select {
					case <-ctx.Done():
						zlog.Logger.Info().Str("channel", cfg.Name).Int("worker", id).Msg("worker shutting down")
						return
					case body := <-msgChan:
						p.process(ctx, q, body)
					}
				}
			}(i)
		}
	}

	<-ctx.Done()
	wg.Wait()

	for name, msgChan := range pending {
		p.requeueBuffered(name, msgChan)
	}

	zlog.Logger.Info().Msg("worker pool stopped")
}

// requeueBuffered hands back jobs consumed but never picked up by a worker.
func (p *Pool) requeueBuffered(channel string, msgChan chan []byte) {
	for {
		select {
		case body := <-msgChan:
			p.requeue(channel, body)
		default:
			return
		}
	}
}

func (p *Pool) requeue(channel string, body []byte) {
	if err := p.manager.Broker().Publish(context.Background(), channel, body); err != nil {
		zlog.Logger.Error().Err(err).Str("channel", channel).Msg("failed to requeue job")
	}
}

func (p *Pool) process(ctx context.Context, q *queue.Queue, body []byte) {
	cfg := q.Config()

	var job model.Job
	if err := json.Unmarshal(body, &job); err != nil {
		zlog.Logger.Error().Err(err).Str("channel", cfg.Name).Msg("failed to unmarshal job")
		return
	}

	waited, err := q.Limiter().Wait(ctx)
	if err != nil {
		// shutting down: the job is delayed, not dropped
		p.requeue(cfg.Name, body)
		return
	}
	metrics.LimiterWait.WithLabelValues(cfg.Name).Observe(waited.Seconds())

	if err := p.execute(ctx, q, &job); err != nil {
		metrics.JobsFailed.WithLabelValues(cfg.Name).Inc()
		p.reporter.Report(job, err)
		return
	}

	zlog.Logger.Info().Str("job_id", job.ID.String()).Str("channel", cfg.Name).Msg("job done")
}

// execute runs the job once, or up to Attempts times when the channel opts
// into retries. Every attempt after the first takes a fresh limiter slot.
func (p *Pool) execute(ctx context.Context, q *queue.Queue, job *model.Job) error {
	cfg := q.Config()

	attempt := func() error {
		if job.Attempt > 0 {
			if _, err := q.Limiter().Wait(ctx); err != nil {
				return err
			}
		}

		job.Attempt++
		metrics.JobsStarted.WithLabelValues(cfg.Name).Inc()

		return p.safeHandle(ctx, *job)
	}

	if cfg.Attempts <= 1 {
		return attempt()
	}

	strategy := p.strategy
	strategy.Attempts = cfg.Attempts

	return retry.Do(attempt, strategy)
}

func (p *Pool) safeHandle(ctx context.Context, job model.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()

	return p.handler.HandleJob(ctx, job)
}
