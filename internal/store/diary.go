package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
)

// DiaryStore defines the interface for diary data persistence.
type DiaryStore interface {
	// Create saves a new diary to the store.
	// Returns validation errors from the domain Diary if data is invalid.
	Create(ctx context.Context, diary *domain.Diary) error

	// GetByID retrieves a diary by its unique ID.
	// Returns ErrDiaryNotFound if the diary does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error)

	// Update saves the title, content and analysis fields of an existing diary.
	// Returns ErrDiaryNotFound if the diary does not exist.
	Update(ctx context.Context, diary *domain.Diary) error

	// Delete removes a diary.
	// Returns ErrDiaryNotFound if the diary does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ApplyAnalysisOutcome writes a terminal analysis outcome in a single
	// statement. This is the only write path for the analysis columns
	// outside of Update.
	// Returns ErrDiaryNotFound if the diary does not exist.
	ApplyAnalysisOutcome(ctx context.Context, id uuid.UUID, outcome domain.AnalysisOutcome) error

	// FindUnanalyzed returns up to limit diaries still holding
	// domain.ScoreNotAnalyzed, oldest first.
	FindUnanalyzed(ctx context.Context, limit int) ([]*domain.Diary, error)

	// DailyAverageScores returns the average depression score per creation
	// day for one user, ignoring sentinel scores. Days are in UTC and the
	// range is inclusive; zero bounds are open.
	DailyAverageScores(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.DailyAverage, error)

	// WithTx returns a new DiaryStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) DiaryStore
}
