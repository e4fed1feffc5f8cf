package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/events"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/sqlite"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/testdb"
)

// MockEventEmitter mocks the events.EventEmitter interface
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockOutcomePublisher mocks the events.OutcomePublisher interface
type MockOutcomePublisher struct {
	mock.Mock
}

func (m *MockOutcomePublisher) PublishOutcome(ctx context.Context, event events.AnalysisResolved) {
	m.Called(ctx, event)
}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRepository returns a repository over a fresh migrated sqlite database.
func newTestRepository(t *testing.T) *DiaryRepositoryAdapter {
	t.Helper()
	db := testdb.OpenSQLiteWithT(t)
	return NewDiaryRepositoryAdapter(sqlite.NewSQLiteDiaryStore(db, setupTestLogger()), db)
}

// analysisEventFor matches an emitted analysis event for the given diary.
func analysisEventFor(t *testing.T, diaryID interface{ String() string }) interface{} {
	return mock.MatchedBy(func(event *events.TaskRequestEvent) bool {
		if event.Type != events.TypeDiaryAnalysis {
			return false
		}
		var payload events.DiaryAnalysisPayload
		if err := event.UnmarshalPayload(&payload); err != nil {
			t.Errorf("unexpected payload: %v", err)
			return false
		}
		return payload.DiaryID.String() == diaryID.String()
	})
}
