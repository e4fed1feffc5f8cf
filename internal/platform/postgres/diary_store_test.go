//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/postgres"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/store"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/testdb"
)

func TestPostgresDiaryStore_Lifecycle(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx, cancel := context.WithTimeout(context.Background(), testdb.TestTimeout)
		defer cancel()

		s := postgres.NewPostgresDiaryStore(tx, nil)
		diary, err := domain.NewDiary(uuid.New(), "title", "content")
		require.NoError(t, err)
		require.NoError(t, s.Create(ctx, diary))

		pending, err := s.FindUnanalyzed(ctx, 1000)
		require.NoError(t, err)
		found := false
		for _, d := range pending {
			found = found || d.ID == diary.ID
		}
		assert.True(t, found, "new diary should be pending")

		require.NoError(t, s.ApplyAnalysisOutcome(ctx, diary.ID, domain.SuccessOutcome(domain.AnalysisResult{
			VAD:             &domain.VADScore{V: 5, A: 5, D: 5},
			DepressionScore: 64,
			Classification:  "moderate",
		})))

		got, err := s.GetByID(ctx, diary.ID)
		require.NoError(t, err)
		assert.Equal(t, 64, got.DepressionScore)
		require.NotNil(t, got.VAD)
		assert.InDelta(t, 5.0, got.VAD.V, 0.001)

		averages, err := s.DailyAverageScores(ctx, diary.UserID, domain.DateRange{})
		require.NoError(t, err)
		require.Len(t, averages, 1)
		assert.Equal(t, diary.CreatedAt.Format(domain.DateLayout), averages[0].Day)
		assert.InDelta(t, 64.0, averages[0].Average, 0.001)

		require.NoError(t, s.Delete(ctx, diary.ID))
		_, err = s.GetByID(ctx, diary.ID)
		assert.ErrorIs(t, err, store.ErrDiaryNotFound)
	})
}

func TestPostgresDiaryStore_ScoreCheckConstraint(t *testing.T) {
	db := testdb.GetTestDBWithT(t)

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		_, err := tx.ExecContext(ctx, `
			INSERT INTO diaries (id, user_id, title, content, depression_score, created_at, updated_at)
			VALUES ($1, $2, 't', 'c', 150, $3, $3)`,
			uuid.New(), uuid.New(), time.Now().UTC())
		require.Error(t, err)
		assert.True(t, postgres.IsCheckConstraintViolation(err))
		assert.ErrorIs(t, postgres.MapError(err), store.ErrInvalidEntity)
	})
}
