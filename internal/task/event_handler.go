package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/events"
)

// TaskSubmitter accepts analysis work. *Pipeline implements it.
type TaskSubmitter interface {
	SubmitTask(ctx context.Context, subjectID uuid.UUID, content string) error
}

// AnalysisEventHandler implements events.EventHandler by turning diary
// analysis events into queued analysis tasks.
type AnalysisEventHandler struct {
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewAnalysisEventHandler creates a handler that submits to submitter.
func NewAnalysisEventHandler(submitter TaskSubmitter, logger *slog.Logger) *AnalysisEventHandler {
	return &AnalysisEventHandler{
		submitter: submitter,
		logger:    logger.With("component", "analysis_event_handler"),
	}
}

// HandleEvent submits the diary named in a TypeDiaryAnalysis event. Other
// event types are ignored. Submission errors are returned wrapped, so the
// emitter's caller can still match ErrQueueFull or ErrAlreadyInFlight.
func (h *AnalysisEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	if event.Type != events.TypeDiaryAnalysis {
		h.logger.DebugContext(ctx, "ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.DiaryAnalysisPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("%w: failed to unmarshal payload: %v", ErrInvalidTask, err)
	}

	if err := h.submitter.SubmitTask(ctx, payload.DiaryID, payload.Content); err != nil {
		return fmt.Errorf("failed to submit analysis for diary %s: %w", payload.DiaryID, err)
	}

	h.logger.DebugContext(ctx, "analysis task submitted",
		"diary_id", payload.DiaryID,
		"event_id", event.ID)
	return nil
}

// Ensure AnalysisEventHandler implements events.EventHandler
var _ events.EventHandler = (*AnalysisEventHandler)(nil)

// Ensure Pipeline can receive submissions from the handler
var _ TaskSubmitter = (*Pipeline)(nil)
