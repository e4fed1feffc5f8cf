package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/events"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/logger"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/redact"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/store"
)

// DiaryRepository defines the repository interface for the service layer.
// It mirrors store.DiaryStore and adds access to the connection pool for transactions.
type DiaryRepository interface {
	Create(ctx context.Context, diary *domain.Diary) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Diary, error)
	Update(ctx context.Context, diary *domain.Diary) error
	Delete(ctx context.Context, id uuid.UUID) error
	ApplyAnalysisOutcome(ctx context.Context, id uuid.UUID, outcome domain.AnalysisOutcome) error
	FindUnanalyzed(ctx context.Context, limit int) ([]*domain.Diary, error)
	DailyAverageScores(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.DailyAverage, error)

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) DiaryRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// DiaryService provides diary operations. Every write that changes a diary's
// text asks the analysis pipeline for a fresh result.
type DiaryService interface {
	// CreateDiary stores a new diary and requests its analysis.
	// queued is false when the pipeline refused the request; the diary is
	// still stored and stays pending until it is resubmitted or recovered.
	CreateDiary(ctx context.Context, userID uuid.UUID, title, content string) (diary *domain.Diary, queued bool, err error)

	// GetDiary retrieves a diary by its ID.
	GetDiary(ctx context.Context, id uuid.UUID) (*domain.Diary, error)

	// UpdateDiary replaces the title and content, resets the analysis and
	// requests a new one. queued has the same meaning as for CreateDiary.
	UpdateDiary(ctx context.Context, id uuid.UUID, title, content string) (diary *domain.Diary, queued bool, err error)

	// DeleteDiary removes a diary. A later analysis outcome for it is dropped.
	DeleteDiary(ctx context.Context, id uuid.UUID) error

	// ReanalyzeDiary resets the analysis and resubmits the diary. Unlike
	// CreateDiary, a refused submission is returned as an error.
	ReanalyzeDiary(ctx context.Context, id uuid.UUID) (*domain.Diary, error)

	// GetDailyAverageScores returns per-day average depression scores of a user.
	GetDailyAverageScores(ctx context.Context, userID uuid.UUID, r domain.DateRange) ([]domain.DailyAverage, error)
}

// diaryServiceImpl implements the DiaryService interface
type diaryServiceImpl struct {
	diaryRepo    DiaryRepository
	eventEmitter events.EventEmitter
	logger       *slog.Logger
}

// NewDiaryService creates a new DiaryService.
// It returns an error if any of the required dependencies are nil.
func NewDiaryService(
	diaryRepo DiaryRepository,
	eventEmitter events.EventEmitter,
	logger *slog.Logger,
) (DiaryService, error) {
	if diaryRepo == nil {
		return nil, &DiaryServiceError{
			Operation: "create_service",
			Message:   "diaryRepo cannot be nil",
			Err:       ErrInvalidDependency,
		}
	}
	if eventEmitter == nil {
		return nil, &DiaryServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
			Err:       ErrInvalidDependency,
		}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &diaryServiceImpl{
		diaryRepo:    diaryRepo,
		eventEmitter: eventEmitter,
		logger:       logger.With("component", "diary_service"),
	}, nil
}

// CreateDiary implements DiaryService.CreateDiary
func (s *diaryServiceImpl) CreateDiary(
	ctx context.Context,
	userID uuid.UUID,
	title, content string,
) (*domain.Diary, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	diary, err := domain.NewDiary(userID, title, content)
	if err != nil {
		log.Warn("rejected invalid diary",
			"error", err,
			"user_id", userID)
		return nil, false, NewDiaryServiceError("create_diary", "invalid diary", err)
	}

	if err := s.diaryRepo.Create(ctx, diary); err != nil {
		log.Error("failed to save diary",
			"error", err,
			"diary_id", diary.ID,
			"user_id", userID)
		return nil, false, NewDiaryServiceError("create_diary", "failed to save diary", err)
	}

	log.Info("diary created",
		"diary_id", diary.ID,
		"user_id", userID,
		"content", redact.Content(content))

	queued := s.requestAnalysis(ctx, diary) == nil
	return diary, queued, nil
}

// GetDiary implements DiaryService.GetDiary
func (s *diaryServiceImpl) GetDiary(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	diary, err := s.diaryRepo.GetByID(ctx, id)
	if err != nil {
		if !store.IsNotFoundError(err) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve diary",
				"error", err,
				"diary_id", id)
		}
		return nil, NewDiaryServiceError("get_diary", "failed to retrieve diary", err)
	}
	return diary, nil
}

// UpdateDiary implements DiaryService.UpdateDiary
// The read-modify-write runs in one transaction; the analysis request is
// emitted only after it commits.
func (s *diaryServiceImpl) UpdateDiary(
	ctx context.Context,
	id uuid.UUID,
	title, content string,
) (*domain.Diary, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.Diary
	err := store.RunInTransaction(ctx, s.diaryRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.diaryRepo.WithTx(tx)

		diary, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return NewDiaryServiceError("update_diary", "failed to retrieve diary", err)
		}
		if err := diary.Edit(title, content); err != nil {
			return NewDiaryServiceError("update_diary", "invalid diary", err)
		}
		if err := txRepo.Update(ctx, diary); err != nil {
			return NewDiaryServiceError("update_diary", "failed to save diary", err)
		}
		updated = diary
		return nil
	})
	if err != nil {
		log.Warn("diary update failed", "error", err, "diary_id", id)
		return nil, false, err
	}

	log.Info("diary updated",
		"diary_id", id,
		"content", redact.Content(content))

	queued := s.requestAnalysis(ctx, updated) == nil
	return updated, queued, nil
}

// DeleteDiary implements DiaryService.DeleteDiary
func (s *diaryServiceImpl) DeleteDiary(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.diaryRepo.Delete(ctx, id); err != nil {
		if !store.IsNotFoundError(err) {
			log.Error("failed to delete diary", "error", err, "diary_id", id)
		}
		return NewDiaryServiceError("delete_diary", "failed to delete diary", err)
	}

	log.Info("diary deleted", "diary_id", id)
	return nil
}

// ReanalyzeDiary implements DiaryService.ReanalyzeDiary
func (s *diaryServiceImpl) ReanalyzeDiary(ctx context.Context, id uuid.UUID) (*domain.Diary, error) {
	var diary, previous *domain.Diary
	err := store.RunInTransaction(ctx, s.diaryRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.diaryRepo.WithTx(tx)

		d, err := txRepo.GetByID(ctx, id)
		if err != nil {
			return NewDiaryServiceError("reanalyze_diary", "failed to retrieve diary", err)
		}
		snapshot := *d
		d.ResetAnalysis()
		if err := txRepo.Update(ctx, d); err != nil {
			return NewDiaryServiceError("reanalyze_diary", "failed to reset analysis", err)
		}
		diary, previous = d, &snapshot
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.requestAnalysis(ctx, diary); err != nil {
		s.restoreAnalysis(ctx, previous)
		return nil, NewDiaryServiceError("reanalyze_diary", "analysis not queued", err)
	}
	return diary, nil
}

// restoreAnalysis puts back the analysis fields of previous after a refused
// resubmission. The write is skipped when the diary has meanwhile left the
// pending state or been edited, so a newer outcome is never overwritten.
func (s *diaryServiceImpl) restoreAnalysis(ctx context.Context, previous *domain.Diary) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.diaryRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.diaryRepo.WithTx(tx)

		current, err := txRepo.GetByID(ctx, previous.ID)
		if err != nil {
			return err
		}
		if current.AnalysisState() != domain.AnalysisStatePending ||
			current.Title != previous.Title || current.Content != previous.Content {
			log.Debug("diary changed since reset, keeping current analysis",
				slog.String("diary_id", previous.ID.String()))
			return nil
		}
		return txRepo.Update(ctx, previous)
	})
	if err != nil && !store.IsNotFoundError(err) {
		log.Error("failed to restore analysis after refused resubmission",
			slog.String("error", err.Error()),
			slog.String("diary_id", previous.ID.String()))
	}
}

// GetDailyAverageScores implements DiaryService.GetDailyAverageScores
func (s *diaryServiceImpl) GetDailyAverageScores(
	ctx context.Context,
	userID uuid.UUID,
	r domain.DateRange,
) ([]domain.DailyAverage, error) {
	if err := r.Validate(); err != nil {
		return nil, NewDiaryServiceError("daily_average", "invalid date range", err)
	}

	averages, err := s.diaryRepo.DailyAverageScores(ctx, userID, r)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to compute daily averages",
			"error", err,
			"user_id", userID)
		return nil, NewDiaryServiceError("daily_average", "failed to compute daily averages", err)
	}
	return averages, nil
}

// requestAnalysis emits the analysis event for diary. Errors are logged and
// returned so callers can decide whether a refusal is fatal.
func (s *diaryServiceImpl) requestAnalysis(ctx context.Context, diary *domain.Diary) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	event, err := events.NewDiaryAnalysisEvent(diary.ID, diary.Content)
	if err != nil {
		log.Error("failed to create diary analysis event", "error", err, "diary_id", diary.ID)
		return err
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		log.Warn("diary analysis not queued",
			"error", err,
			"diary_id", diary.ID,
			"event_id", event.ID)
		return err
	}

	log.Debug("diary analysis requested", "diary_id", diary.ID, "event_id", event.ID)
	return nil
}
