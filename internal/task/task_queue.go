package task

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the TaskQueue
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// TaskQueue is a bounded FIFO of analysis tasks. Any number of goroutines may
// enqueue; the scheduler is the only consumer. When the queue is full new
// tasks are rejected, never blocked on.
type TaskQueue struct {
	tasks  chan *AnalysisTask
	logger *slog.Logger

	// mu guards closed and keeps Close from racing a send.
	mu     sync.RWMutex
	closed bool
}

// NewTaskQueue creates a new task queue with the specified capacity
func NewTaskQueue(capacity int, logger *slog.Logger) *TaskQueue {
	if capacity <= 0 {
		logger.Warn("invalid queue capacity specified, using default",
			"specified_capacity", capacity,
			"default_capacity", DefaultQueueCapacity)
		capacity = DefaultQueueCapacity
	}

	return &TaskQueue{
		tasks:  make(chan *AnalysisTask, capacity),
		logger: logger.With("component", "task_queue"),
	}
}

// Enqueue adds a task at the tail of the queue.
// Returns an error if the queue is full or closed
func (q *TaskQueue) Enqueue(task *AnalysisTask) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.tasks <- task:
		q.logger.Debug("task enqueued",
			"task_id", task.ID,
			"subject_id", task.SubjectID,
			"retry_count", task.RetryCount(),
			"queue_len", len(q.tasks),
			"queue_cap", cap(q.tasks))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.tasks))
	}
}

// Submit is the boolean form of Enqueue. A rejected task is logged and
// reported with false.
func (q *TaskQueue) Submit(task *AnalysisTask) bool {
	if err := q.Enqueue(task); err != nil {
		q.logger.Warn("task dropped",
			"task_id", task.ID,
			"subject_id", task.SubjectID,
			"retry_count", task.RetryCount(),
			"reason", err.Error())
		return false
	}
	return true
}

// Poll removes and returns the task at the head of the queue. It returns
// false immediately when the queue is empty.
func (q *TaskQueue) Poll() (*AnalysisTask, bool) {
	select {
	case task, ok := <-q.tasks:
		if !ok {
			return nil, false
		}
		return task, true
	default:
		return nil, false
	}
}

// Len returns the number of queued tasks.
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}

// Cap returns the queue capacity.
func (q *TaskQueue) Cap() int {
	return cap(q.tasks)
}

// Close closes the task queue, preventing further task submission.
// Tasks already queued can still be polled.
func (q *TaskQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.tasks)
		q.logger.Info("task queue closed", "remaining", len(q.tasks))
	}
}
