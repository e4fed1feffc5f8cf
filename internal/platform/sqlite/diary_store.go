package sqlite

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

// defaultFindLimit caps FindUnanalyzed when the caller passes no limit.
const defaultFindLimit = 100

// SQLiteDiaryStore implements the store.DiaryStore interface on SQLite.
type SQLiteDiaryStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteDiaryStore creates a SQLite DiaryStore over a connection or transaction.
// If logger is nil, a default logger will be used.
func NewSQLiteDiaryStore(db store.DBTX, logger *slog.Logger) *SQLiteDiaryStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteDiaryStore{
		db:     db,
		logger: logger.With(slog.String("component", "diary_store"), slog.String("driver", "sqlite")),
	}
}

var _ store.DiaryStore = (*SQLiteDiaryStore)(nil)

// Create implements store.DiaryStore.Create
func (s *SQLiteDiaryStore) Create(ctx context.Context, diary *domain.Diary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := diary.Validate(); err != nil {
		log.Warn("diary validation failed during create",
			slog.String("error", err.Error()),
			slog.String("diary_id", diary.ID.String()))
		return err
	}

	cols := store.AnalysisColumnsFromDiary(diary)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO diaries (`+diaryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
			slog.String("diary_id", diary.ID.String()))
		return store.NewStoreError("diary", "create", "failed to insert diary", MapError(err))
	}

	log.Info("diary created",
		slog.String("diary_id", diary.ID.String()),
		slog.String("user_id", diary.UserID.String()))
	return nil
}

// GetByID implements store.DiaryStore.GetByID
func (s *SQLiteDiaryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	row := s.db.QueryRowContext(ctx, `SELECT `+diaryColumns+` FROM diaries WHERE id = ?`, id)
	diary, err := scanDiary(row)
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
func (s *SQLiteDiaryStore) Update(ctx context.Context, diary *domain.Diary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := diary.Validate(); err != nil {
		log.Warn("diary validation failed during update",
			slog.String("error", err.Error()),
			slog.String("diary_id", diary.ID.String()))
		return err
	}

	cols := store.AnalysisColumnsFromDiary(diary)
	result, err := s.db.ExecContext(ctx, `
		UPDATE diaries
		SET title = ?, content = ?, depression_score = ?,
			vad_v = ?, vad_a = ?, vad_d = ?, classification = ?,
			analyzed_at = ?, updated_at = ?
		WHERE id = ?`,
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
	return checkDiaryAffected(result)
}

// Delete implements store.DiaryStore.Delete
func (s *SQLiteDiaryStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM diaries WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete diary",
			slog.String("error", err.Error()),
			slog.String("diary_id", id.String()))
		return store.NewStoreError("diary", "delete", "failed to delete diary", MapError(err))
	}
	if err := checkDiaryAffected(result); err != nil {
		return err
	}

	log.Info("diary deleted", slog.String("diary_id", id.String()))
	return nil
}

// ApplyAnalysisOutcome implements store.DiaryStore.ApplyAnalysisOutcome
func (s *SQLiteDiaryStore) ApplyAnalysisOutcome(
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

	cols := store.AnalysisColumnsFromOutcome(outcome, time.Now().UTC())
	result, err := s.db.ExecContext(ctx, `
		UPDATE diaries
		SET depression_score = ?, vad_v = ?, vad_a = ?, vad_d = ?,
			classification = ?, analyzed_at = ?
		WHERE id = ?`,
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
func (s *SQLiteDiaryStore) FindUnanalyzed(ctx context.Context, limit int) ([]*domain.Diary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = defaultFindLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+diaryColumns+`
		FROM diaries
		WHERE depression_score = ?
		ORDER BY created_at ASC
		LIMIT ?`,
		domain.ScoreNotAnalyzed, limit)
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
			return nil, store.NewStoreError("diary", "find_unanalyzed", "scan failed", err)
		}
		diaries = append(diaries, diary)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("diary", "find_unanalyzed", "row iteration failed", err)
	}
	return diaries, nil
}

// DailyAverageScores implements store.DiaryStore.DailyAverageScores
func (s *SQLiteDiaryStore) DailyAverageScores(
	ctx context.Context,
	userID uuid.UUID,
	r domain.DateRange,
) ([]domain.DailyAverage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := r.Validate(); err != nil {
		return nil, err
	}

	conditions := []string{"user_id = ?", "depression_score >= 0"}
	args := []any{userID}
	if !r.Start.IsZero() {
		conditions = append(conditions, "substr(created_at, 1, 10) >= ?")
		args = append(args, r.Start.UTC().Format(domain.DateLayout))
	}
	if !r.End.IsZero() {
		conditions = append(conditions, "substr(created_at, 1, 10) <= ?")
		args = append(args, r.End.UTC().Format(domain.DateLayout))
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 10) AS day, AVG(depression_score)
		FROM diaries
		WHERE `+strings.Join(conditions, " AND ")+`
		GROUP BY day
		ORDER BY day`,
		args...)
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
func (s *SQLiteDiaryStore) WithTx(tx *sql.Tx) store.DiaryStore {
	return &SQLiteDiaryStore{db: tx, logger: s.logger}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDiary(row rowScanner) (*domain.Diary, error) {
	var diary domain.Diary
	var cols store.AnalysisColumns

	if err := row.Scan(
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
	); err != nil {
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
