package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/analysis"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/logger"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/redact"
)

// Requeuer accepts a failed task back at the tail of the queue.
type Requeuer interface {
	Submit(task *AnalysisTask) bool
}

// CompletionHook is called once for every task that reaches a terminal outcome.
type CompletionHook func(task *AnalysisTask, outcome domain.AnalysisOutcome)

// WorkerConfig holds the retry policy of a Worker.
type WorkerConfig struct {
	// MaxRetryCount is how many times a failed task is requeued before it
	// resolves to the error outcome.
	MaxRetryCount int
}

// Worker runs the remote analysis for a task and decides its fate: a
// successful result is written to the sink, a failure is requeued until the
// retry budget is spent, after which the error outcome is written instead.
// Failures never propagate to the submitter.
type Worker struct {
	analyzer      Analyzer
	sink          ResultSink
	queue         Requeuer
	dedup         *Deduplicator
	maxRetryCount int
	onComplete    CompletionHook
	logger        *slog.Logger
}

// WorkerOption customises a Worker.
type WorkerOption func(*Worker)

// WithDeduplicator makes the worker release the subject's in-flight slot on
// every terminal outcome.
func WithDeduplicator(d *Deduplicator) WorkerOption {
	return func(w *Worker) {
		w.dedup = d
	}
}

// WithWorkerCompletionHook registers a hook fired on every terminal outcome.
func WithWorkerCompletionHook(hook CompletionHook) WorkerOption {
	return func(w *Worker) {
		w.onComplete = hook
	}
}

// NewWorker creates a Worker. All dependencies are required.
func NewWorker(
	analyzer Analyzer,
	sink ResultSink,
	queue Requeuer,
	config WorkerConfig,
	logger *slog.Logger,
	opts ...WorkerOption,
) (*Worker, error) {
	if analyzer == nil {
		return nil, errors.New("analyzer cannot be nil")
	}
	if sink == nil {
		return nil, errors.New("result sink cannot be nil")
	}
	if queue == nil {
		return nil, errors.New("requeuer cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	logger = logger.With("component", "analysis_worker")

	maxRetryCount := config.MaxRetryCount
	if maxRetryCount < 0 {
		logger.Warn("invalid max retry count specified, using default",
			"specified_count", config.MaxRetryCount,
			"default_count", DefaultMaxRetryCount)
		maxRetryCount = DefaultMaxRetryCount
	}

	w := &Worker{
		analyzer:      analyzer,
		sink:          sink,
		queue:         queue,
		maxRetryCount: maxRetryCount,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Process performs one analysis attempt for the task. It returns an error only
// when a terminal outcome could not be written; the task is terminal anyway.
func (w *Worker) Process(ctx context.Context, task *AnalysisTask) error {
	log := w.taskLogger(ctx, task)
	log.Debug("analyzing task", "content", redact.Content(task.Content))

	start := time.Now()
	result, err := w.analyze(ctx, task)
	if err != nil {
		log.Warn("analysis attempt failed",
			"error", redact.Error(err),
			"elapsed", time.Since(start))
		return w.HandleFailure(ctx, task, err)
	}

	log.Info("analysis succeeded",
		"depression_score", result.DepressionScore,
		"elapsed", time.Since(start))
	return w.resolve(ctx, task, domain.SuccessOutcome(result))
}

// analyze calls the analyzer, turning a panic inside it into a failed attempt
// so it goes through the same retry policy as any other error.
func (w *Worker) analyze(ctx context.Context, task *AnalysisTask) (result domain.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			w.taskLogger(ctx, task).Error("analyzer panicked",
				"panic", r,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("%w: panic: %v", ErrTaskPanicked, r)
		}
	}()

	return w.analyzer.Analyze(ctx, analysis.Request{
		SubjectID: task.SubjectID,
		Content:   task.Content,
	})
}

// HandleFailure applies the retry policy to a task whose attempt failed with
// cause. A task with retries left is requeued at the tail; one with no
// retries left, or that cannot be requeued, resolves to the error outcome.
func (w *Worker) HandleFailure(ctx context.Context, task *AnalysisTask, cause error) error {
	log := w.taskLogger(ctx, task)

	// The pipeline is shutting down. Leave the subject unanalyzed so startup
	// recovery picks it up again instead of recording a failure.
	if ctx.Err() != nil {
		log.Info("task abandoned during shutdown", "cause", redact.Error(cause))
		w.release(task)
		return nil
	}

	if task.RetryExhausted(w.maxRetryCount) {
		log.Warn("retries exhausted, recording analysis failure",
			"max_retry_count", w.maxRetryCount)
		return w.resolve(ctx, task, domain.ErrorOutcome())
	}

	// Once accepted, the task belongs to whichever worker picks it up next,
	// so nothing on it is read after Submit.
	task.IncrementRetryCount()
	retries := task.RetryCount()
	if w.queue.Submit(task) {
		log.Debug("task requeued", "retry_count", retries)
		return nil
	}

	log.Warn("task could not be requeued, recording analysis failure",
		"retry_count", retries)
	return w.resolve(ctx, task, domain.ErrorOutcome())
}

// Fail resolves the task to the error outcome without another attempt.
func (w *Worker) Fail(ctx context.Context, task *AnalysisTask) error {
	return w.resolve(ctx, task, domain.ErrorOutcome())
}

// resolve writes the terminal outcome. The write is detached from ctx
// cancellation so a result obtained just before shutdown is still stored.
func (w *Worker) resolve(ctx context.Context, task *AnalysisTask, outcome domain.AnalysisOutcome) error {
	defer w.complete(task, outcome)

	if err := w.sink.Apply(context.WithoutCancel(ctx), task.SubjectID, outcome); err != nil {
		return fmt.Errorf("failed to apply %s outcome for subject %s: %w",
			outcome.Kind, task.SubjectID, err)
	}

	w.taskLogger(ctx, task).Debug("outcome applied",
		"outcome", outcome.Kind.String(),
		"depression_score", outcome.Score())
	return nil
}

func (w *Worker) complete(task *AnalysisTask, outcome domain.AnalysisOutcome) {
	w.release(task)
	if w.onComplete != nil {
		w.onComplete(task, outcome)
	}
}

func (w *Worker) release(task *AnalysisTask) {
	if w.dedup != nil {
		w.dedup.Release(task.SubjectID, task.ID)
	}
}

func (w *Worker) taskLogger(ctx context.Context, task *AnalysisTask) *slog.Logger {
	return logger.FromContextOrDefault(ctx, w.logger).With(
		"task_id", task.ID,
		"subject_id", task.SubjectID,
		"retry_count", task.RetryCount())
}
