package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/retry"

	mocks "github.com/aliskhannn/crm-notifier/internal/mocks/worker"
	"github.com/aliskhannn/crm-notifier/internal/model"
	"github.com/aliskhannn/crm-notifier/internal/queue"
)

func newManager(t *testing.T, cfgs ...queue.Config) (*queue.Manager, *queue.MemoryBroker) {
	t.Helper()

	broker := queue.NewMemoryBroker()
	m, err := queue.NewManager(broker, nil, cfgs...)
	require.NoError(t, err)

	return m, broker
}

func fast(name string) queue.Config {
	return queue.Config{Name: name, Max: 100, Duration: 100 * time.Millisecond}
}

// onChannel matches jobs published on one channel.
type onChannel string

func (c onChannel) Matches(x interface{}) bool {
	job, ok := x.(model.Job)
	return ok && job.Channel == string(c)
}

func (c onChannel) String() string {
	return "job on channel " + string(c)
}

func runPool(p *Pool) (context.CancelFunc, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		p.Run(ctx)
		close(done)
	}()

	return cancel, done
}

func TestPool_ChannelsAreIndependent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	slow := queue.Config{Name: "slow", Max: 1, Duration: time.Hour}
	m, broker := newManager(t, slow, fast("fast"))

	handler := mocks.NewMockjobHandler(ctrl)
	reporter := mocks.NewMockerrorReporter(ctrl)

	var slowRuns, fastRuns atomic.Int32
	handler.EXPECT().HandleJob(gomock.Any(), onChannel("slow")).DoAndReturn(
		func(context.Context, model.Job) error { slowRuns.Add(1); return nil },
	).Times(1)
	handler.EXPECT().HandleJob(gomock.Any(), onChannel("fast")).DoAndReturn(
		func(context.Context, model.Job) error { fastRuns.Add(1); return nil },
	).Times(5)

	for i := 0; i < 3; i++ {
		_, err := m.Enqueue(context.Background(), "slow", "x", nil)
		require.NoError(t, err)
	}
	for i := 0; i < 5; i++ {
		_, err := m.Enqueue(context.Background(), "fast", "x", nil)
		require.NoError(t, err)
	}

	cancel, done := runPool(NewPool(m, handler, reporter, retry.Strategy{}))

	require.Eventually(t, func() bool { return fastRuns.Load() == 5 && slowRuns.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done

	assert.Equal(t, 2, broker.Len("slow"), "throttled jobs are requeued on shutdown")
}

func TestPool_FailureDoesNotBlockNextJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m, _ := newManager(t, fast("ch"))

	handler := mocks.NewMockjobHandler(ctrl)
	reporter := mocks.NewMockerrorReporter(ctrl)

	var handled atomic.Int32
	gomock.InOrder(
		handler.EXPECT().HandleJob(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, model.Job) error { handled.Add(1); return errors.New("telegram: 400 Bad Request") },
		),
		handler.EXPECT().HandleJob(gomock.Any(), gomock.Any()).DoAndReturn(
			func(context.Context, model.Job) error { handled.Add(1); return nil },
		),
	)
	reporter.EXPECT().Report(gomock.Any(), gomock.Any()).Times(1)

	_, err := m.Enqueue(context.Background(), "ch", "x", nil)
	require.NoError(t, err)
	_, err = m.Enqueue(context.Background(), "ch", "x", nil)
	require.NoError(t, err)

	cancel, done := runPool(NewPool(m, handler, reporter, retry.Strategy{}))

	require.Eventually(t, func() bool { return handled.Load() == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestPool_RecoversPanics(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m, _ := newManager(t, fast("ch"))

	handler := mocks.NewMockjobHandler(ctrl)
	reporter := mocks.NewMockerrorReporter(ctrl)

	reported := make(chan error, 1)
	handler.EXPECT().HandleJob(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, model.Job) error { panic("nil chat") },
	)
	reporter.EXPECT().Report(gomock.Any(), gomock.Any()).Do(func(_ model.Job, err error) { reported <- err })

	_, err := m.Enqueue(context.Background(), "ch", "x", nil)
	require.NoError(t, err)

	cancel, done := runPool(NewPool(m, handler, reporter, retry.Strategy{}))
	defer func() {
		cancel()
		<-done
	}()

	select {
	case err := <-reported:
		assert.Contains(t, err.Error(), "panicked")
	case <-time.After(time.Second):
		t.Fatal("panic was not reported")
	}
}

func TestPool_RetriesWhenChannelOptsIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := fast("ch")
	cfg.Attempts = 3
	m, _ := newManager(t, cfg)

	handler := mocks.NewMockjobHandler(ctrl)
	reporter := mocks.NewMockerrorReporter(ctrl)

	var attempts []int
	finished := make(chan struct{})
	handler.EXPECT().HandleJob(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, job model.Job) error {
			attempts = append(attempts, job.Attempt)
			if job.Attempt < 3 {
				return errors.New("429 Too Many Requests")
			}
			close(finished)
			return nil
		},
	).Times(3)

	_, err := m.Enqueue(context.Background(), "ch", "x", nil)
	require.NoError(t, err)

	strategy := retry.Strategy{Delay: time.Millisecond, Backoff: 1}
	cancel, done := runPool(NewPool(m, handler, reporter, strategy))

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("job did not succeed")
	}

	cancel()
	<-done

	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestPool_NoRetryByDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m, _ := newManager(t, fast("ch"))

	handler := mocks.NewMockjobHandler(ctrl)
	reporter := mocks.NewMockerrorReporter(ctrl)

	reported := make(chan model.Job, 1)
	handler.EXPECT().HandleJob(gomock.Any(), gomock.Any()).Return(errors.New("boom")).Times(1)
	reporter.EXPECT().Report(gomock.Any(), gomock.Any()).Do(func(job model.Job, _ error) { reported <- job })

	_, err := m.Enqueue(context.Background(), "ch", "x", nil)
	require.NoError(t, err)

	cancel, done := runPool(NewPool(m, handler, reporter, retry.Strategy{Attempts: 5, Delay: time.Millisecond}))

	select {
	case job := <-reported:
		assert.Equal(t, 1, job.Attempt)
	case <-time.After(time.Second):
		t.Fatal("failure was not reported")
	}

	cancel()
	<-done
}
