package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/events"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/logger"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/store"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/task"
)

// OutcomeWriter is the slice of the diary store the result sink needs.
type OutcomeWriter interface {
	ApplyAnalysisOutcome(ctx context.Context, id uuid.UUID, outcome domain.AnalysisOutcome) error
}

// AnalysisResultSink writes terminal analysis outcomes to the diary store
// and announces them to an optional publisher.
type AnalysisResultSink struct {
	writer    OutcomeWriter
	publisher events.OutcomePublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewAnalysisResultSink creates a sink. publisher may be nil.
func NewAnalysisResultSink(
	writer OutcomeWriter,
	publisher events.OutcomePublisher,
	logger *slog.Logger,
) (*AnalysisResultSink, error) {
	if writer == nil {
		return nil, fmt.Errorf("%w: writer cannot be nil", ErrInvalidDependency)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisResultSink{
		writer:    writer,
		publisher: publisher,
		logger:    logger.With("component", "result_sink"),
		now:       time.Now,
	}, nil
}

var _ task.ResultSink = (*AnalysisResultSink)(nil)

// Apply implements task.ResultSink. A diary deleted while its analysis was
// in flight is skipped without error.
func (s *AnalysisResultSink) Apply(ctx context.Context, subjectID uuid.UUID, outcome domain.AnalysisOutcome) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.writer.ApplyAnalysisOutcome(ctx, subjectID, outcome)
	if errors.Is(err, store.ErrDiaryNotFound) {
		log.Info("diary no longer exists, dropping analysis outcome",
			"diary_id", subjectID,
			"outcome", outcome.Kind.String())
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to apply analysis outcome for diary %s: %w", subjectID, err)
	}

	log.Info("analysis outcome applied",
		"diary_id", subjectID,
		"outcome", outcome.Kind.String(),
		"depression_score", outcome.Score())

	if s.publisher != nil {
		s.publisher.PublishOutcome(ctx, events.NewAnalysisResolved(subjectID, outcome, s.now()))
	}
	return nil
}
