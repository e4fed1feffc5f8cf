package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// ProcessFunc runs one task to completion. A returned error is reported to
// the pool's error handler.
type ProcessFunc func(ctx context.Context, task *AnalysisTask) error

// WorkerPool manages a pool of worker goroutines that process tasks handed to
// it by the scheduler. It owns a small backlog so that a tick never waits on
// a busy worker, and it handles graceful shutdown and worker lifecycle.
type WorkerPool struct {
	// backlog buffers dispatched tasks until a worker is free
	backlog chan *AnalysisTask

	// process is the function each worker runs per task
	process ProcessFunc

	// workerCount is the number of concurrent workers to start
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is cancelled on Stop and passed to every task
	ctx    context.Context
	cancel context.CancelFunc

	logger *slog.Logger

	// errorHandler is called when a task returns an error or panics
	// If nil, errors are only logged
	errorHandler func(task *AnalysisTask, err error)

	mu      sync.Mutex
	started bool
	stopped bool
}

// WorkerPoolConfig holds configuration options for the worker pool
type WorkerPoolConfig struct {
	// WorkerCount determines how many concurrent worker goroutines to start
	// If zero or negative, defaults to 1
	WorkerCount int

	// Backlog is the number of dispatched tasks that may wait for a worker
	// If zero or negative, defaults to WorkerCount
	Backlog int
}

// DefaultWorkerPoolConfig returns a WorkerPoolConfig with reasonable defaults
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		WorkerCount: DefaultWorkerCount,
		Backlog:     DefaultWorkerBacklog,
	}
}

// NewWorkerPool creates a new worker pool with the specified configuration
func NewWorkerPool(process ProcessFunc, config WorkerPoolConfig, logger *slog.Logger) *WorkerPool {
	logger = logger.With("component", "worker_pool")

	// Apply defaults for invalid config values
	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}

	backlog := config.Backlog
	if backlog <= 0 {
		backlog = workerCount
		logger.Warn("invalid worker backlog specified, using worker count",
			"specified_backlog", config.Backlog,
			"default_backlog", backlog)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		backlog:     make(chan *AnalysisTask, backlog),
		process:     process,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler allows setting a custom error handler for task execution failures
func (p *WorkerPool) SetErrorHandler(handler func(task *AnalysisTask, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines. Calling Start more than once has no effect.
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped {
		return
	}
	p.started = true

	p.logger.Info("starting worker pool",
		"worker_count", p.workerCount,
		"backlog", cap(p.backlog))

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop cancels in-flight tasks and waits for every worker to return. Tasks
// still waiting in the backlog are discarded.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()

	p.logger.Info("worker pool stopped", "discarded_backlog", len(p.backlog))
}

// Dispatch hands a task to the pool without blocking. It returns false when
// the backlog is full or the pool has been stopped.
func (p *WorkerPool) Dispatch(task *AnalysisTask) bool {
	p.mu.Lock()
	stopped := p.stopped
	p.mu.Unlock()
	if stopped {
		return false
	}

	select {
	case p.backlog <- task:
		return true
	default:
		return false
	}
}

// worker processes tasks from the backlog until the pool is stopped
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case task := <-p.backlog:
			p.runTask(task, id)
		}
	}
}

// runTask executes a single task, turning a panic into an error for the
// error handler so one bad task cannot take a worker down.
func (p *WorkerPool) runTask(task *AnalysisTask, workerID int) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%w: panic: %v", ErrTaskPanicked, r)
			p.logger.Error("task panicked",
				"task_id", task.ID,
				"subject_id", task.SubjectID,
				"worker_id", workerID,
				"error", err,
				"stack", string(debug.Stack()))
			p.handleError(task, err)
		}
	}()

	if err := p.process(p.ctx, task); err != nil {
		p.logger.Error("task execution failed",
			"task_id", task.ID,
			"subject_id", task.SubjectID,
			"worker_id", workerID,
			"error", err)
		p.handleError(task, err)
	}
}

func (p *WorkerPool) handleError(task *AnalysisTask, err error) {
	if p.errorHandler != nil {
		p.errorHandler(task, err)
	}
}

// Ensure WorkerPool can serve as the scheduler's Dispatcher
var _ Dispatcher = (*WorkerPool)(nil)
