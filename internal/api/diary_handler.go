package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/api/shared"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/logger"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/service"
)

// DiaryHandler handles diary-related HTTP requests
type DiaryHandler struct {
	diaryService service.DiaryService
	logger       *slog.Logger
}

// NewDiaryHandler creates a new DiaryHandler
func NewDiaryHandler(diaryService service.DiaryService, logger *slog.Logger) *DiaryHandler {
	if diaryService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("diaryService cannot be nil for DiaryHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &DiaryHandler{
		diaryService: diaryService,
		logger:       logger.With(slog.String("component", "diary_handler")),
	}
}

// CreateDiary handles POST /api/diaries requests.
// It responds 202 because the analysis completes asynchronously.
func (h *DiaryHandler) CreateDiary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateDiaryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid create diary body", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid user_id")
		return
	}

	diary, queued, err := h.diaryService.CreateDiary(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create diary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, DiaryWriteResponse{
		DiaryResponse:  diaryToResponse(diary),
		AnalysisQueued: queued,
	})
}

// GetDiary handles GET /api/diaries/{id} requests
func (h *DiaryHandler) GetDiary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathDiaryID(w, r)
	if !ok {
		return
	}

	diary, err := h.diaryService.GetDiary(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get diary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, diaryToResponse(diary))
}

// UpdateDiary handles PUT /api/diaries/{id} requests.
// The stored analysis is reset and a new one requested.
func (h *DiaryHandler) UpdateDiary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathDiaryID(w, r)
	if !ok {
		return
	}

	var req UpdateDiaryRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	diary, queued, err := h.diaryService.UpdateDiary(r.Context(), id, req.Title, req.Content)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update diary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, DiaryWriteResponse{
		DiaryResponse:  diaryToResponse(diary),
		AnalysisQueued: queued,
	})
}

// DeleteDiary handles DELETE /api/diaries/{id} requests
func (h *DiaryHandler) DeleteDiary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathDiaryID(w, r)
	if !ok {
		return
	}

	if err := h.diaryService.DeleteDiary(r.Context(), id); err != nil {
		HandleAPIError(w, r, err, "Failed to delete diary")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ReanalyzeDiary handles POST /api/diaries/{id}/analysis requests.
// A refusal by the pipeline is reported as 409 (already in flight) or
// 503 (queue full) so the client knows whether retrying makes sense.
func (h *DiaryHandler) ReanalyzeDiary(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathDiaryID(w, r)
	if !ok {
		return
	}

	diary, err := h.diaryService.ReanalyzeDiary(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to request analysis")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, DiaryWriteResponse{
		DiaryResponse:  diaryToResponse(diary),
		AnalysisQueued: true,
	})
}

// GetDailyAverages handles GET /api/users/{userID}/depression/daily requests
func (h *DiaryHandler) GetDailyAverages(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, err := getPathUUID(r, "userID")
	if err != nil {
		log.Debug("invalid user id", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return
	}

	dr, err := getDateRange(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	averages, err := h.diaryService.GetDailyAverageScores(r.Context(), userID, dr)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute daily averages")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, dailyAveragesToResponse(averages))
}

// pathDiaryID parses the {id} path parameter and writes a 400 when it is invalid.
func (h *DiaryHandler) pathDiaryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).
			Debug("invalid diary id", slog.String("error", err.Error()))
		HandleAPIError(w, r, err, "")
		return uuid.Nil, false
	}
	return id, true
}
