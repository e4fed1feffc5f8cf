package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TypeDiaryAnalysis is the event type that requests analysis of a diary.
const TypeDiaryAnalysis = "diary_analysis"

// TaskRequestEvent represents a request to start background work.
// It lets the service layer ask for work without importing the task package.
type TaskRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type selects which handler acts on the event
	Type string `json:"type"`

	// Payload contains the type-specific data serialized as JSON
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// DiaryAnalysisPayload is the payload of a TypeDiaryAnalysis event.
type DiaryAnalysisPayload struct {
	DiaryID uuid.UUID `json:"diary_id"`
	Content string    `json:"content"`
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *TaskRequestEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// NewTaskRequestEvent creates a new TaskRequestEvent with the specified type and payload.
func NewTaskRequestEvent(eventType string, payload interface{}) (*TaskRequestEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return &TaskRequestEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// NewDiaryAnalysisEvent creates the event that asks for diaryID to be analyzed.
func NewDiaryAnalysisEvent(diaryID uuid.UUID, content string) (*TaskRequestEvent, error) {
	return NewTaskRequestEvent(TypeDiaryAnalysis, DiaryAnalysisPayload{
		DiaryID: diaryID,
		Content: content,
	})
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *TaskRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows services to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent delivers the given event to all registered handlers.
	// Handler errors are returned so the caller can tell whether the
	// requested work was accepted.
	EmitEvent(ctx context.Context, event *TaskRequestEvent) error
}
