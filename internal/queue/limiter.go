package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Clock abstracts time for the limiter so tests can run without sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock is the wall clock.
var RealClock Clock = realClock{}

var ErrInvalidLimit = errors.New("limit requires max > 0 and duration > 0")

// Limiter caps job starts to max per duration.
//
// Tokens refill one at a time every duration/max (rounded up to the next
// nanosecond) with a bucket of one, so starts are spread evenly and no
// half-open window of length duration ever holds more than max of them.
type Limiter struct {
	max      int
	duration time.Duration
	every    time.Duration
	rl       *rate.Limiter
	clock    Clock

	mu   sync.Mutex
	next time.Time // earliest start of the next reservation
}

// NewLimiter creates a limiter for max starts per duration.
func NewLimiter(max int, duration time.Duration, clock Clock) (*Limiter, error) {
	if max <= 0 || duration <= 0 {
		return nil, ErrInvalidLimit
	}

	if clock == nil {
		clock = RealClock
	}

	every := (duration + time.Duration(max) - 1) / time.Duration(max)

	return &Limiter{
		max:      max,
		duration: duration,
		every:    every,
		rl:       rate.NewLimiter(rate.Every(every), 1),
		clock:    clock,
	}, nil
}

// Wait blocks until the next start slot and returns the time spent waiting.
// A cancelled wait gives its slot back.
func (l *Limiter) Wait(ctx context.Context) (time.Duration, error) {
	l.mu.Lock()
	now := l.clock.Now()

	r := l.rl.ReserveN(now, 1)
	if !r.OK() {
		l.mu.Unlock()
		return 0, ErrInvalidLimit
	}

	// the token bucket works in float seconds, keep whole-nanosecond spacing
	start := now.Add(r.DelayFrom(now))
	if start.Before(l.next) {
		start = l.next
	}
	l.next = start.Add(l.every)
	l.mu.Unlock()

	delay := start.Sub(now)
	if delay <= 0 {
		return 0, nil
	}

	select {
	case <-l.clock.After(delay):
		return delay, nil
	case <-ctx.Done():
		l.mu.Lock()
		r.CancelAt(l.clock.Now())
		if l.next.Equal(start.Add(l.every)) {
			l.next = start
		}
		l.mu.Unlock()
		return 0, ctx.Err()
	}
}

// Interval is the minimum spacing between two starts.
func (l *Limiter) Interval() time.Duration {
	return l.every
}
