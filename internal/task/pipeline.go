package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Pipeline defaults
const (
	DefaultQueueCapacity = 100
	DefaultTickPeriod    = time.Second
	DefaultMaxRetryCount = 3
	DefaultWorkerCount   = 4
	DefaultWorkerBacklog = 100
)

// PipelineConfig holds configuration for the analysis pipeline
type PipelineConfig struct {
	// QueueCapacity bounds the number of waiting tasks
	QueueCapacity int

	// TickPeriod is the interval between dispatches
	TickPeriod time.Duration

	// MaxRetryCount is how many times a failing task is retried
	MaxRetryCount int

	// WorkerCount determines how many analysis calls may run at once
	WorkerCount int

	// WorkerBacklog bounds dispatched tasks waiting for a worker
	WorkerBacklog int
}

// DefaultPipelineConfig returns a PipelineConfig with reasonable defaults
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		QueueCapacity: DefaultQueueCapacity,
		TickPeriod:    DefaultTickPeriod,
		MaxRetryCount: DefaultMaxRetryCount,
		WorkerCount:   DefaultWorkerCount,
		WorkerBacklog: DefaultWorkerBacklog,
	}
}

type pipelineOptions struct {
	clock      Clock
	onComplete CompletionHook
}

// PipelineOption customises a Pipeline.
type PipelineOption func(*pipelineOptions)

// WithClock replaces the scheduler's clock.
func WithClock(clock Clock) PipelineOption {
	return func(o *pipelineOptions) {
		o.clock = clock
	}
}

// WithCompletionHook registers a hook fired on every terminal outcome.
func WithCompletionHook(hook CompletionHook) PipelineOption {
	return func(o *pipelineOptions) {
		o.onComplete = hook
	}
}

// Pipeline wires the queue, scheduler, worker pool and worker into the
// asynchronous analysis path. Submissions return as soon as the task is
// queued; the outcome is only ever observable through the ResultSink.
type Pipeline struct {
	config    PipelineConfig
	queue     *TaskQueue
	dedup     *Deduplicator
	pool      *WorkerPool
	worker    *Worker
	scheduler *Scheduler
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewPipeline creates a Pipeline. Invalid config values fall back to defaults.
func NewPipeline(
	config PipelineConfig,
	analyzer Analyzer,
	sink ResultSink,
	logger *slog.Logger,
	opts ...PipelineOption,
) (*Pipeline, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	logger = logger.With("component", "analysis_pipeline")

	var options pipelineOptions
	for _, opt := range opts {
		opt(&options)
	}

	config = sanitizeConfig(config, logger)

	queue := NewTaskQueue(config.QueueCapacity, logger)
	dedup := NewDeduplicator()

	workerOpts := []WorkerOption{WithDeduplicator(dedup)}
	if options.onComplete != nil {
		workerOpts = append(workerOpts, WithWorkerCompletionHook(options.onComplete))
	}
	worker, err := NewWorker(analyzer, sink, queue, WorkerConfig{MaxRetryCount: config.MaxRetryCount}, logger, workerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}

	pool := NewWorkerPool(worker.Process, WorkerPoolConfig{
		WorkerCount: config.WorkerCount,
		Backlog:     config.WorkerBacklog,
	}, logger)

	p := &Pipeline{
		config: config,
		queue:  queue,
		dedup:  dedup,
		pool:   pool,
		worker: worker,
		logger: logger,
	}
	pool.SetErrorHandler(p.handleTaskError)
	p.scheduler = NewScheduler(queue, pool, config.TickPeriod, options.clock, p.resolveOverflow, logger)

	return p, nil
}

func sanitizeConfig(config PipelineConfig, logger *slog.Logger) PipelineConfig {
	defaults := DefaultPipelineConfig()

	if config.QueueCapacity <= 0 {
		logger.Warn("invalid queue capacity, using default",
			"specified", config.QueueCapacity, "default", defaults.QueueCapacity)
		config.QueueCapacity = defaults.QueueCapacity
	}
	if config.TickPeriod <= 0 {
		logger.Warn("invalid tick period, using default",
			"specified", config.TickPeriod, "default", defaults.TickPeriod)
		config.TickPeriod = defaults.TickPeriod
	}
	if config.MaxRetryCount < 0 {
		logger.Warn("invalid max retry count, using default",
			"specified", config.MaxRetryCount, "default", defaults.MaxRetryCount)
		config.MaxRetryCount = defaults.MaxRetryCount
	}
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count, using default",
			"specified", config.WorkerCount, "default", defaults.WorkerCount)
		config.WorkerCount = defaults.WorkerCount
	}
	if config.WorkerBacklog <= 0 {
		logger.Warn("invalid worker backlog, using default",
			"specified", config.WorkerBacklog, "default", defaults.WorkerBacklog)
		config.WorkerBacklog = defaults.WorkerBacklog
	}
	return config
}

// Config returns the effective configuration.
func (p *Pipeline) Config() PipelineConfig {
	return p.config
}

// SubmitTask queues an analysis of content for subjectID. It returns
// ErrAlreadyInFlight if the subject already has a pending task, ErrQueueFull
// if the queue is at capacity, and ErrQueueClosed after Stop.
func (p *Pipeline) SubmitTask(ctx context.Context, subjectID uuid.UUID, content string) error {
	if subjectID == uuid.Nil {
		return fmt.Errorf("%w: subject ID cannot be empty", ErrInvalidTask)
	}
	if content == "" {
		return fmt.Errorf("%w: content cannot be empty", ErrInvalidTask)
	}

	task := NewAnalysisTask(subjectID, content)

	if !p.dedup.TryAcquire(subjectID, task.ID) {
		p.logger.DebugContext(ctx, "submission rejected, subject already in flight",
			"subject_id", subjectID)
		return fmt.Errorf("%w: %s", ErrAlreadyInFlight, subjectID)
	}

	if err := p.queue.Enqueue(task); err != nil {
		p.dedup.Release(subjectID, task.ID)
		p.logger.WarnContext(ctx, "analysis task dropped",
			"subject_id", subjectID,
			"reason", err.Error())
		return err
	}

	p.logger.DebugContext(ctx, "analysis task submitted",
		"task_id", task.ID,
		"subject_id", subjectID,
		"queue_len", p.queue.Len())
	return nil
}

// Submit is the boolean form of SubmitTask: it reports whether the task was
// accepted.
func (p *Pipeline) Submit(subjectID uuid.UUID, content string) bool {
	return p.SubmitTask(context.Background(), subjectID, content) == nil
}

// Start launches the workers and the scheduler.
func (p *Pipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrQueueClosed
	}
	if p.started {
		return nil
	}
	p.started = true

	p.pool.Start()
	p.scheduler.Start(ctx)

	p.logger.InfoContext(ctx, "analysis pipeline started",
		"queue_capacity", p.config.QueueCapacity,
		"tick_period", p.config.TickPeriod,
		"max_retry_count", p.config.MaxRetryCount,
		"worker_count", p.config.WorkerCount)
	return nil
}

// Stop halts dispatching, cancels running analyses and closes the queue.
// A stopped pipeline accepts no further tasks.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.scheduler.Stop()
	p.pool.Stop()
	p.queue.Close()

	p.logger.Info("analysis pipeline stopped",
		"queued_tasks", p.queue.Len(),
		"in_flight_subjects", p.dedup.Count())
}

// Recover resubmits diaries that never received an outcome, such as those
// queued when the process last stopped. It returns how many were queued.
func (p *Pipeline) Recover(ctx context.Context, source PendingSource) (int, error) {
	diaries, err := source.FindUnanalyzed(ctx, p.config.QueueCapacity)
	if err != nil {
		return 0, fmt.Errorf("failed to load unanalyzed diaries: %w", err)
	}

	p.logger.InfoContext(ctx, "recovering unanalyzed diaries", "count", len(diaries))

	submitted := 0
	for _, diary := range diaries {
		if err := p.SubmitTask(ctx, diary.ID, diary.Content); err != nil {
			p.logger.WarnContext(ctx, "failed to resubmit diary",
				"diary_id", diary.ID,
				"error", err)
			continue
		}
		submitted++
	}
	return submitted, nil
}

// InFlight reports whether subjectID has a task queued or running.
func (p *Pipeline) InFlight(subjectID uuid.UUID) bool {
	return p.dedup.Active(subjectID)
}

// QueueLen returns the number of tasks waiting for a tick.
func (p *Pipeline) QueueLen() int {
	return p.queue.Len()
}

// handleTaskError is the pool's error handler. Analyzer panics are already
// retried inside the worker, so a panic that reaches the pool was raised while
// the outcome was being written. The task was resolved at that point and is
// not retried; other errors are terminal write failures already logged by the
// pool.
func (p *Pipeline) handleTaskError(task *AnalysisTask, err error) {
	if !errors.Is(err, ErrTaskPanicked) {
		return
	}
	p.logger.Error("task panicked after resolution, not retrying",
		"task_id", task.ID,
		"subject_id", task.SubjectID,
		"error", err)
}

func (p *Pipeline) resolveOverflow(ctx context.Context, task *AnalysisTask) {
	if err := p.worker.Fail(ctx, task); err != nil {
		p.logger.Error("failed to record overflowed task",
			"task_id", task.ID,
			"subject_id", task.SubjectID,
			"error", err)
	}
}
