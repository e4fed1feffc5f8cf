package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/logger"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/store"
)

const diaryColumns = `id, user_id, title, content, depression_score,
	vad_v, vad_a, vad_d, classification, analyzed_at, created_at, updated_at`

// PostgresDiaryStore implements the store.DiaryStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDiaryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDiaryStore creates a new PostgreSQL implementation of the DiaryStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDiaryStore(db store.DBTX, logger *slog.Logger) *PostgresDiaryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDiaryStore{
		db:     db,
		logger: logger.With(slog.String("component", "diary_store")),
	}
}

// Ensure PostgresDiaryStore implements store.DiaryStore interface
var _ store.DiaryStore = (*PostgresDiaryStore)(nil)

// Create implements store.DiaryStore.Create
func (s *PostgresDiaryStore) Create(ctx context.Context, diary *domain.Diary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := diary.Validate(); err != nil {
		log.Warn("diary validation failed during create",
			slog.String("error", err.Error()),
			slog.String("diary_id", diary.ID.String()))
		return err
	}

	cols := store.AnalysisColumnsFromDiary(diary)
	query := `
		INSERT INTO diaries (` + diaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		diary.ID,
		diary.UserID,
		diary.Title,
		diary.Content,
		cols.Score,
		cols.VADV,
		cols.VADA,
		cols.VADD,
		cols.Classification,
		cols.AnalyzedAt,
		diary.CreatedAt.UTC(),
		diary.UpdatedAt.UTC(),
	)
	if err != nil {
		log.Error("failed to create diary",
			slog.String("error", err.Error()),
			slog.String("diary_id", diary.ID.String()),
			slog.String("user_id", diary.UserID.String()))
		return store.NewStoreError("diary", "create", "failed to insert diary", MapError(err))
	}

	log.Info("diary created",
		slog.String("diary_id", diary.ID.String()),
		slog.String("user_id", diary.UserID.String()))
	return nil
}

// GetByID implements store.DiaryStore.GetByID
func (s *PostgresDiaryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + diaryColumns + ` FROM diaries WHERE id = $1`
	diary, err := scanDiary(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("diary not found", slog.String("diary_id", id.String()))
			return nil, store.ErrDiaryNotFound
		}
		log.Error("failed to get diary by ID",
			slog.String("error", err.Error()),
			slog.String("diary_id", id.String()))
		return nil, store.NewStoreError("diary", "get", "failed to query diary", MapError(err))
	}

	return diary, nil
}

// Update implements store.DiaryStore.Update
func (s *PostgresDiaryStore) Update(ctx context.Context, diary *domain.Diary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := diary.Validate(); err != nil {
		log.Warn("diary validation failed during update",
			slog.String("error", err.Error()),
			slog.String("diary_id", diary.ID.String()))
		return err
	}

	cols := store.AnalysisColumnsFromDiary(diary)
	query := `
		UPDATE diaries
		SET title = $1, content = $2, depression_score = $3,
			vad_v = $4, vad_a = $5, vad_d = $6, classification = $7,
			analyzed_at = $8, updated_at = $9
		WHERE id = $10
	`
	result, err := s.db.ExecContext(ctx, query,
		diary.Title,
		diary.Content,
		cols.Score,
		cols.VADV,
		cols.VADA,
		cols.VADD,
		cols.Classification,
		cols.AnalyzedAt,
		diary.UpdatedAt.UTC(),
		diary.ID,
	)
	if err != nil {
		log.Error("failed to update diary",
			slog.String("error", err.Error()),
			slog.String("diary_id", diary.ID.String()))
		return store.NewStoreError("diary", "update", "failed to update diary", MapError(err))
	}

	if err := checkDiaryAffected(result); err != nil {
		log.Debug("diary not found for update", slog.String("diary_id", diary.ID.String()))
		return err
	}

	log.Info("diary updated", slog.String("diary_id", diary.ID.String()))
	return nil
}

// Delete implements store.DiaryStore.Delete
func (s *PostgresDiaryStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM diaries WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete diary",
			slog.String("error", err.Error()),
			slog.String("diary_id", id.String()))
		return store.NewStoreError("diary", "delete", "failed to delete diary", MapError(err))
	}

	if err := checkDiaryAffected(result); err != nil {
		log.Debug("diary not found for delete", slog.String("diary_id", id.String()))
		return err
	}

	log.Info("diary deleted", slog.String("diary_id", id.String()))
	return nil
}

// ApplyAnalysisOutcome implements store.DiaryStore.ApplyAnalysisOutcome
func (s *PostgresDiaryStore) ApplyAnalysisOutcome(
	ctx context.Context,
	id uuid.UUID,
	outcome domain.AnalysisOutcome,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := outcome.Validate(); err != nil {
		log.Warn("rejected invalid analysis outcome",
			slog.String("error", err.Error()),
			slog.String("diary_id", id.String()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	now := time.Now().UTC()
	cols := store.AnalysisColumnsFromOutcome(outcome, now)
	query := `
		UPDATE diaries
		SET depression_score = $1, vad_v = $2, vad_a = $3, vad_d = $4,
			classification = $5, analyzed_at = $6
		WHERE id = $7
	`
	result, err := s.db.ExecContext(ctx, query,
		cols.Score,
		cols.VADV,
		cols.VADA,
		cols.VADD,
		cols.Classification,
		cols.AnalyzedAt,
		id,
	)
	if err != nil {
		log.Error("failed to apply analysis outcome",
			slog.String("error", err.Error()),
			slog.String("diary_id", id.String()))
		return store.NewStoreError("diary", "apply_outcome", "failed to write outcome", MapError(err))
	}

	if err := checkDiaryAffected(result); err != nil {
		return err
	}

	log.Debug("analysis outcome applied",
		slog.String("diary_id", id.String()),
		slog.String("outcome", outcome.Kind.String()),
		slog.Int("depression_score", cols.Score))
	return nil
}

// FindUnanalyzed implements store.DiaryStore.FindUnanalyzed
func (s *PostgresDiaryStore) FindUnanalyzed(ctx context.Context, limit int) ([]*domain.Diary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT ` + diaryColumns + `
		FROM diaries
		WHERE depression_score = $1
		ORDER BY created_at ASC
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, domain.ScoreNotAnalyzed, limit)
	if err != nil {
		log.Error("failed to query unanalyzed diaries", slog.String("error", err.Error()))
		return nil, store.NewStoreError("diary", "find_unanalyzed", "query failed", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	diaries := []*domain.Diary{}
	for rows.Next() {
		diary, err := scanDiary(rows)
		if err != nil {
			log.Error("failed to scan diary row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("diary", "find_unanalyzed", "scan failed", err)
		}
		diaries = append(diaries, diary)
	}
	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("diary", "find_unanalyzed", "row iteration failed", err)
	}

	log.Debug("found unanalyzed diaries", slog.Int("count", len(diaries)))
	return diaries, nil
}

// DailyAverageScores implements store.DiaryStore.DailyAverageScores
func (s *PostgresDiaryStore) DailyAverageScores(
	ctx context.Context,
	userID uuid.UUID,
	r domain.DateRange,
) ([]domain.DailyAverage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := r.Validate(); err != nil {
		return nil, err
	}

	conditions := []string{"user_id = $1", "depression_score >= 0"}
	args := []any{userID}
	if !r.Start.IsZero() {
		args = append(args, r.Start.UTC())
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !r.End.IsZero() {
		args = append(args, store.DayUpperBound(r.End))
		conditions = append(conditions, fmt.Sprintf("created_at < $%d", len(args)))
	}

	query := `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
			AVG(depression_score)::float8
		FROM diaries
		WHERE ` + strings.Join(conditions, " AND ") + `
		GROUP BY day
		ORDER BY day
	`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query daily averages",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, store.NewStoreError("diary", "daily_average", "query failed", MapError(err))
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	averages := []domain.DailyAverage{}
	for rows.Next() {
		var avg domain.DailyAverage
		if err := rows.Scan(&avg.Day, &avg.Average); err != nil {
			return nil, store.NewStoreError("diary", "daily_average", "scan failed", err)
		}
		averages = append(averages, avg)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("diary", "daily_average", "row iteration failed", err)
	}

	return averages, nil
}

// WithTx implements store.DiaryStore.WithTx
func (s *PostgresDiaryStore) WithTx(tx *sql.Tx) store.DiaryStore {
	return &PostgresDiaryStore{
		db:     tx,
		logger: s.logger,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiary(row rowScanner) (*domain.Diary, error) {
	var diary domain.Diary
	var cols store.AnalysisColumns

	err := row.Scan(
		&diary.ID,
		&diary.UserID,
		&diary.Title,
		&diary.Content,
		&cols.Score,
		&cols.VADV,
		&cols.VADA,
		&cols.VADD,
		&cols.Classification,
		&cols.AnalyzedAt,
		&diary.CreatedAt,
		&diary.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cols.ApplyTo(&diary)
	diary.CreatedAt = diary.CreatedAt.UTC()
	diary.UpdatedAt = diary.UpdatedAt.UTC()
	return &diary, nil
}

func checkDiaryAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrDiaryNotFound
	}
	return nil
}
