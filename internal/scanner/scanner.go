// Package scanner finds reminders coming due and hands each of them to the
// dispatcher exactly once.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
	"golang.org/x/sync/errgroup"

	"github.com/aliskhannn/crm-notifier/internal/metrics"
	"github.com/aliskhannn/crm-notifier/internal/model"
	"github.com/aliskhannn/crm-notifier/internal/repository/reminder"
	"github.com/aliskhannn/crm-notifier/internal/service/notification"
)

type reminderStore interface {
	ClaimDue(ctx context.Context, kind model.ReminderKind, c reminder.Claim) ([]model.Reminder, error)
	MarkNotified(ctx context.Context, kind model.ReminderKind, id int64, owner string) error
	Release(ctx context.Context, kind model.ReminderKind, id int64, owner string) error
}

type dispatcher interface {
	Dispatch(ctx context.Context, r model.Reminder) (notification.Report, error)
}

var (
	ErrQueryFailure   = errors.New("reminder query failed")
	ErrTickInProgress = errors.New("previous tick still running")
	ErrAlreadyStarted = errors.New("scanner already started")
)

const (
	outcomeDone    = "done"
	outcomeSkipped = "skipped"
	outcomeFailed  = "failed"
	outcomeLocked  = "locked"

	cronRetry = 30 * time.Second
)

// Config holds the scanner settings.
type Config struct {
	Cron        string         `mapstructure:"cron"`         // schedule, "* * * * *" ticks every minute
	Interval    time.Duration  `mapstructure:"interval"`     // used when Cron is empty
	Lookahead   time.Duration  `mapstructure:"lookahead"`    // due window length
	ClaimTTL    time.Duration  `mapstructure:"claim_ttl"`    // claims older than this are taken over
	ClaimMargin time.Duration  `mapstructure:"claim_margin"` // no dispatch starts later than ClaimTTL-ClaimMargin into a tick
	Concurrency int            `mapstructure:"concurrency"`  // reminders dispatched in parallel
	LockKey     string         `mapstructure:"lock_key"`
	LockTTL     time.Duration  `mapstructure:"lock_ttl"`
	Retry       retry.Strategy `mapstructure:"retry"` // for mark and release writes
}

func (c *Config) setDefaults() {
	if c.Cron == "" && c.Interval <= 0 {
		c.Interval = time.Minute
	}
	if c.Lookahead <= 0 {
		c.Lookahead = 15 * time.Minute
	}
	if c.ClaimTTL <= 0 {
		c.ClaimTTL = 5 * time.Minute
	}
	if c.ClaimMargin <= 0 {
		c.ClaimMargin = c.ClaimTTL / 5
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 8
	}
	if c.LockKey == "" {
		c.LockKey = "reminder-scanner:tick"
	}
	if c.LockTTL <= 0 {
		c.LockTTL = 50 * time.Second
	}
	if c.Retry.Attempts <= 0 {
		c.Retry.Attempts = 1
	}
}

// FailedReminder is a reminder whose dispatch failed during a tick.
type FailedReminder struct {
	ID    int64              `json:"id"`
	Kind  model.ReminderKind `json:"kind"`
	Error string             `json:"error"`
}

// TickResult summarises one tick.
type TickResult struct {
	Owner     string           `json:"owner"`
	From      time.Time        `json:"from"`
	To        time.Time        `json:"to"`
	Claimed   int              `json:"claimed"`
	Notified  int              `json:"notified"`
	Released  int              `json:"released"`
	ClaimLost int              `json:"claim_lost"`
	Expired   int              `json:"expired"` // claimed but not dispatched before the tick deadline
	Failed    []FailedReminder `json:"failed,omitempty"`
}

// Scanner periodically claims due reminders, dispatches them and marks them
// notified.
type Scanner struct {
	store      reminderStore
	dispatcher dispatcher
	lock       *tickLock // nil without redis
	cfg        Config
	instance   string
	now        func() time.Time

	running sync.Mutex // held for the duration of a tick

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a scanner. l may be nil to scan without a cross-replica lock.
func New(store reminderStore, d dispatcher, l locker, cfg Config) (*Scanner, error) {
	cfg.setDefaults()

	if cfg.ClaimMargin >= cfg.ClaimTTL {
		return nil, fmt.Errorf("scanner claim_margin %s must be below claim_ttl %s", cfg.ClaimMargin, cfg.ClaimTTL)
	}

	if cfg.Cron != "" && !gronx.New().IsValid(cfg.Cron) {
		return nil, fmt.Errorf("invalid scanner cron %q", cfg.Cron)
	}

	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "scanner"
	}

	s := &Scanner{
		store:      store,
		dispatcher: d,
		cfg:        cfg,
		instance:   host,
		now:        time.Now,
	}

	if l != nil {
		s.lock = &tickLock{client: l, key: cfg.LockKey, ttl: cfg.LockTTL}
	}

	return s, nil
}

// Start runs the schedule loop in the background until Stop or ctx is done.
func (s *Scanner) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	zlog.Logger.Info().
		Str("cron", s.cfg.Cron).
		Dur("interval", s.cfg.Interval).
		Dur("lookahead", s.cfg.Lookahead).
		Msg("reminder scanner started")

	go s.loop(ctx, s.done)

	return nil
}

// Stop ends the schedule loop and waits for the running tick to finish.
func (s *Scanner) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	zlog.Logger.Info().Msg("reminder scanner stopped")
}

func (s *Scanner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		next, err := s.nextTick(s.now())
		if err != nil {
			zlog.Logger.Error().Err(err).Str("cron", s.cfg.Cron).Msg("failed to compute next tick")
			next = s.now().Add(cronRetry)
		}

		select {
		case <-time.After(time.Until(next)):
			s.scheduledTick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scanner) nextTick(after time.Time) (time.Time, error) {
	if s.cfg.Cron == "" {
		return after.Add(s.cfg.Interval), nil
	}

	return gronx.NextTickAfter(s.cfg.Cron, after, false)
}

// scheduledTick runs a tick under the cross-replica lock when one is set.
func (s *Scanner) scheduledTick(ctx context.Context) {
	if s.lock != nil {
		token := uuid.NewString()

		ok, err := s.lock.acquire(ctx, token)
		if err != nil {
			// the store claim still keeps this safe
			zlog.Logger.Warn().Err(err).Msg("failed to take scanner lock, scanning anyway")
		} else if !ok {
			metrics.ScannerTicks.WithLabelValues(outcomeLocked).Inc()
			zlog.Logger.Debug().Msg("tick taken by another replica")
			return
		} else {
			defer func() {
				if err := s.lock.release(context.WithoutCancel(ctx), token); err != nil {
					zlog.Logger.Warn().Err(err).Msg("failed to release scanner lock")
				}
			}()
		}
	}

	res, err := s.Tick(ctx)
	if err != nil {
		if !errors.Is(err, ErrTickInProgress) {
			zlog.Logger.Error().Err(err).Msg("reminder tick failed")
		}
		return
	}

	if res.Claimed > 0 {
		zlog.Logger.Info().
			Int("claimed", res.Claimed).
			Int("notified", res.Notified).
			Int("released", res.Released).
			Int("claim_lost", res.ClaimLost).
			Msg("reminder tick done")
	}
}

// Tick claims every reminder due in [now, now+lookahead], dispatches each
// one and marks it notified, or releases it when the dispatch failed. A tick
// started while another is running returns ErrTickInProgress.
//
// Dispatches run under a deadline of ClaimTTL-ClaimMargin. A reminder whose
// turn comes after that deadline is released without being dispatched, so
// no claim of this tick is taken over while its dispatch may still be running.
func (s *Scanner) Tick(ctx context.Context) (TickResult, error) {
	if !s.running.TryLock() {
		metrics.ScannerTicks.WithLabelValues(outcomeSkipped).Inc()
		zlog.Logger.Warn().Msg("previous reminder tick still running, skipping")
		return TickResult{}, ErrTickInProgress
	}
	defer s.running.Unlock()

	budget := s.cfg.ClaimTTL - s.cfg.ClaimMargin
	dispatchCtx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	now := s.now().UTC()
	cutoff := now.Add(budget)
	res := TickResult{
		Owner: fmt.Sprintf("%s/%s", s.instance, uuid.NewString()),
		From:  now,
		To:    now.Add(s.cfg.Lookahead),
	}

	claim := reminder.Claim{
		From:        res.From,
		To:          res.To,
		Owner:       res.Owner,
		At:          now,
		StaleBefore: now.Add(-s.cfg.ClaimTTL),
	}

	var due []model.Reminder
	for _, kind := range model.ReminderKinds {
		batch, err := s.store.ClaimDue(ctx, kind, claim)
		if err != nil {
			// give back what the other kinds already claimed
			for _, r := range due {
				s.release(ctx, r, res.Owner)
			}
			metrics.ScannerTicks.WithLabelValues(outcomeFailed).Inc()
			return res, fmt.Errorf("%w: %w", ErrQueryFailure, err)
		}

		metrics.RemindersClaimed.WithLabelValues(string(kind)).Add(float64(len(batch)))
		due = append(due, batch...)
	}

	res.Claimed = len(due)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.cfg.Concurrency)

	for _, r := range due {
		r := r
		g.Go(func() error {
			var out outcome
			if dispatchCtx.Err() != nil || !s.now().Before(cutoff) {
				zlog.Logger.Warn().
					Int64("reminder_id", r.ID).
					Str("kind", string(r.Kind)).
					Msg("tick deadline reached, releasing reminder undispatched")
				out = outcome{expired: true, released: s.release(ctx, r, res.Owner)}
			} else {
				out = s.process(dispatchCtx, r, res.Owner)
			}

			mu.Lock()
			defer mu.Unlock()

			switch {
			case out.expired:
				res.Expired++
				if out.released {
					res.Released++
				}
			case out.err != nil:
				res.Failed = append(res.Failed, FailedReminder{ID: r.ID, Kind: r.Kind, Error: out.err.Error()})
				if out.released {
					res.Released++
				}
			case out.claimLost:
				res.ClaimLost++
			default:
				res.Notified++
			}
			return nil
		})
	}

	_ = g.Wait()

	metrics.ScannerTicks.WithLabelValues(outcomeDone).Inc()
	return res, nil
}

type outcome struct {
	err       error
	released  bool
	claimLost bool
	expired   bool
}

// process runs claim -> dispatch -> mark for one reminder.
func (s *Scanner) process(ctx context.Context, r model.Reminder, owner string) outcome {
	log := zlog.Logger.With().Int64("reminder_id", r.ID).Str("kind", string(r.Kind)).Logger()

	report, err := s.dispatcher.Dispatch(ctx, r)
	switch {
	case errors.Is(err, notification.ErrNoRecipients):
		// nobody to notify, retrying cannot help
		log.Warn().Err(err).Msg("reminder has no recipients, marking notified")
	case err != nil && ctx.Err() != nil:
		// sends may still be in flight, the claim is left to expire
		log.Error().Err(err).Msg("reminder dispatch hit the tick deadline")
		return outcome{err: err}
	case err != nil:
		log.Error().Err(err).Msg("reminder dispatch failed, releasing claim")
		return outcome{err: err, released: s.release(ctx, r, owner)}
	}

	if len(report.Failures) > 0 {
		log.Warn().
			Int("failed", len(report.Failures)).
			Int("delivered", report.Delivered).
			Msg("reminder partly delivered")
	}

	var lost bool
	err = retry.Do(func() error {
		err := s.store.MarkNotified(context.WithoutCancel(ctx), r.Kind, r.ID, owner)
		if errors.Is(err, reminder.ErrClaimLost) {
			lost = true
			return nil
		}
		return err
	}, s.cfg.Retry)

	switch {
	case err != nil:
		// claim expires after claim_ttl and a later tick sends again
		log.Error().Err(err).Msg("failed to mark reminder notified")
		return outcome{err: fmt.Errorf("mark notified: %w", err)}
	case lost:
		log.Warn().Msg("reminder claim lost before it was marked notified")
		return outcome{claimLost: true}
	}

	metrics.RemindersNotified.WithLabelValues(string(r.Kind)).Inc()
	log.Info().Int("delivered", report.Delivered).Msg("reminder notified")

	return outcome{}
}

func (s *Scanner) release(ctx context.Context, r model.Reminder, owner string) bool {
	err := retry.Do(func() error {
		err := s.store.Release(context.WithoutCancel(ctx), r.Kind, r.ID, owner)
		if errors.Is(err, reminder.ErrClaimLost) {
			return nil
		}
		return err
	}, s.cfg.Retry)
	if err != nil {
		zlog.Logger.Error().
			Err(err).
			Int64("reminder_id", r.ID).
			Str("kind", string(r.Kind)).
			Msg("failed to release reminder claim")
		return false
	}

	metrics.RemindersReleased.WithLabelValues(string(r.Kind)).Inc()
	return true
}
