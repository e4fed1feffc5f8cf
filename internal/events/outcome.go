package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
)

// AnalysisResolved announces that a diary's analysis reached a terminal outcome.
type AnalysisResolved struct {
	DiaryID         uuid.UUID            `json:"diary_id"`
	State           domain.AnalysisState `json:"state"`
	DepressionScore int                  `json:"depression_score"`
	DepressionLevel int                  `json:"depression_level"`
	Classification  string               `json:"classification,omitempty"`
	ResolvedAt      time.Time            `json:"resolved_at"`
}

// NewAnalysisResolved builds the notification for outcome applied to diaryID at the given time.
func NewAnalysisResolved(diaryID uuid.UUID, outcome domain.AnalysisOutcome, at time.Time) AnalysisResolved {
	score := outcome.Score()
	return AnalysisResolved{
		DiaryID:         diaryID,
		State:           domain.StateForScore(score),
		DepressionScore: score,
		DepressionLevel: domain.LevelForScore(score),
		Classification:  outcome.Result.Classification,
		ResolvedAt:      at.UTC(),
	}
}

// OutcomePublisher fans resolved outcomes out to live subscribers.
// Publishing is best effort and never blocks the caller on slow subscribers.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, event AnalysisResolved)
}
