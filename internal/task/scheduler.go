package task

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Ticker delivers the scheduler's periodic ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. It is swapped for a manual clock in tests.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct {
	t *time.Ticker
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

func (r realTicker) C() <-chan time.Time {
	return r.t.C
}

func (r realTicker) Stop() {
	r.t.Stop()
}

// RealClock returns the Clock backed by time.NewTicker.
func RealClock() Clock {
	return realClock{}
}

// OverflowFunc resolves a task that could neither be dispatched nor put back
// on the queue.
type OverflowFunc func(ctx context.Context, task *AnalysisTask)

// Scheduler is the single consumer of the TaskQueue. On every tick it takes
// at most one task and hands it to the dispatcher, which caps the rate of
// remote calls at one per tick period.
type Scheduler struct {
	queue      *TaskQueue
	dispatcher Dispatcher
	period     time.Duration
	clock      Clock
	overflow   OverflowFunc
	logger     *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewScheduler creates a Scheduler that ticks every period.
func NewScheduler(
	queue *TaskQueue,
	dispatcher Dispatcher,
	period time.Duration,
	clock Clock,
	overflow OverflowFunc,
	logger *slog.Logger,
) *Scheduler {
	logger = logger.With("component", "scheduler")

	if period <= 0 {
		logger.Warn("invalid tick period specified, using default",
			"specified_period", period,
			"default_period", DefaultTickPeriod)
		period = DefaultTickPeriod
	}
	if clock == nil {
		clock = RealClock()
	}

	return &Scheduler{
		queue:      queue,
		dispatcher: dispatcher,
		period:     period,
		clock:      clock,
		overflow:   overflow,
		logger:     logger,
	}
}

// Tick moves at most one task from the queue to the dispatcher. It reports
// whether a task was dispatched.
func (s *Scheduler) Tick(ctx context.Context) bool {
	task, ok := s.queue.Poll()
	if !ok {
		return false
	}

	if s.dispatcher.Dispatch(task) {
		s.logger.Debug("task dispatched",
			"task_id", task.ID,
			"subject_id", task.SubjectID,
			"retry_count", task.RetryCount(),
			"queue_len", s.queue.Len())
		return true
	}

	// Workers are saturated. Putting the task back is not an attempt.
	s.logger.Warn("worker backlog full, requeueing task",
		"task_id", task.ID,
		"subject_id", task.SubjectID)
	if s.queue.Submit(task) {
		return false
	}

	s.logger.Error("task could not be dispatched or requeued, recording analysis failure",
		"task_id", task.ID,
		"subject_id", task.SubjectID)
	if s.overflow != nil {
		s.overflow(ctx, task)
	}
	return false
}

// Start runs the tick loop in a goroutine until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := s.clock.NewTicker(s.period)
	done := make(chan struct{})

	s.cancel = cancel
	s.done = done
	s.running = true

	s.logger.Info("scheduler started", "tick_period", s.period)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				s.Tick(ctx)
			}
		}
	}()
}

// Stop ends the tick loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel, done := s.cancel, s.done
	s.running = false
	s.mu.Unlock()

	cancel()
	<-done
	s.logger.Info("scheduler stopped")
}
