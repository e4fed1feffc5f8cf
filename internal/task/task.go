package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/analysis"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
)

// Errors returned by task submission.
var (
	// ErrInvalidTask is returned when a task is missing its subject or content.
	ErrInvalidTask = errors.New("invalid analysis task")

	// ErrTaskPanicked wraps a panic recovered from the analyzer or from task processing.
	ErrTaskPanicked = errors.New("task processing panicked")
)

// AnalysisTask is one unit of analysis work for a single subject. The
// identity fields never change after creation. The retry count only grows,
// and only the worker advances it.
type AnalysisTask struct {
	// ID identifies this submission in logs.
	ID uuid.UUID

	// SubjectID is the diary the result is written to.
	SubjectID uuid.UUID

	// Content is the text sent for analysis.
	Content string

	// SubmittedAt is when the task was first accepted.
	SubmittedAt time.Time

	retryCount int
}

// NewAnalysisTask creates a task for the given subject with a zero retry count.
func NewAnalysisTask(subjectID uuid.UUID, content string) *AnalysisTask {
	return &AnalysisTask{
		ID:          uuid.New(),
		SubjectID:   subjectID,
		Content:     content,
		SubmittedAt: time.Now().UTC(),
	}
}

// RetryCount returns how many times the task has been requeued after a failure.
func (t *AnalysisTask) RetryCount() int {
	return t.retryCount
}

// IncrementRetryCount records one more retry.
func (t *AnalysisTask) IncrementRetryCount() {
	t.retryCount++
}

// RetryExhausted reports whether the task may not be retried again.
func (t *AnalysisTask) RetryExhausted(maxRetryCount int) bool {
	return t.retryCount >= maxRetryCount
}

// Analyzer performs the remote analysis call. *analysis.Client implements it.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (domain.AnalysisResult, error)
}

// ResultSink persists the terminal outcome of a task onto its subject.
// Applying an outcome to a subject that no longer exists must succeed
// without effect.
type ResultSink interface {
	Apply(ctx context.Context, subjectID uuid.UUID, outcome domain.AnalysisOutcome) error
}

// Dispatcher hands a task to a worker without blocking. It returns false when
// the task could not be accepted.
type Dispatcher interface {
	Dispatch(task *AnalysisTask) bool
}

// PendingSource lists subjects that still await analysis, used to refill the
// queue after a restart.
type PendingSource interface {
	FindUnanalyzed(ctx context.Context, limit int) ([]*domain.Diary, error)
}

// Ensure *analysis.Client can be used as an Analyzer
var _ Analyzer = (*analysis.Client)(nil)
