package api

import (
	"time"

	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
)

// CreateDiaryRequest defines the payload for creating a diary.
type CreateDiaryRequest struct {
	UserID  string `json:"user_id" validate:"required,uuid"`
	Title   string `json:"title"   validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// UpdateDiaryRequest defines the payload for replacing a diary's text.
type UpdateDiaryRequest struct {
	Title   string `json:"title"   validate:"required,max=255"`
	Content string `json:"content" validate:"required"`
}

// DiaryResponse is the diary as returned by the API. The analysis fields are
// reported as stored: DepressionScore may be -1 (pending) or -2 (failed),
// and AnalysisState names which.
type DiaryResponse struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Title           string           `json:"title"`
	Content         string           `json:"content"`
	DepressionScore int              `json:"depression_score"`
	DepressionLevel int              `json:"depression_level"`
	AnalysisState   string           `json:"analysis_state"`
	VAD             *domain.VADScore `json:"vad_score,omitempty"`
	Classification  string           `json:"classification,omitempty"`
	AnalyzedAt      *time.Time       `json:"analyzed_at,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// DiaryWriteResponse is returned by the endpoints that request an analysis.
// AnalysisQueued is false when the pipeline refused the request and the
// diary stays pending.
type DiaryWriteResponse struct {
	DiaryResponse
	AnalysisQueued bool `json:"analysis_queued"`
}

// DailyAveragesResponse maps each day (YYYY-MM-DD) to its average depression score.
type DailyAveragesResponse struct {
	Averages map[string]float64 `json:"averages"`
}

// diaryToResponse converts a domain.Diary to a DiaryResponse
func diaryToResponse(d *domain.Diary) DiaryResponse {
	return DiaryResponse{
		ID:              d.ID.String(),
		UserID:          d.UserID.String(),
		Title:           d.Title,
		Content:         d.Content,
		DepressionScore: d.DepressionScore,
		DepressionLevel: d.DepressionLevel(),
		AnalysisState:   string(d.AnalysisState()),
		VAD:             d.VAD,
		Classification:  d.Classification,
		AnalyzedAt:      d.AnalyzedAt,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func dailyAveragesToResponse(averages []domain.DailyAverage) DailyAveragesResponse {
	resp := DailyAveragesResponse{Averages: make(map[string]float64, len(averages))}
	for _, a := range averages {
		resp.Averages[a.Day] = a.Average
	}
	return resp
}
