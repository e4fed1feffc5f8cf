package analysis

import (
	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
)

// Request is a single analysis call.
type Request struct {
	// SubjectID identifies the diary for logging only; it is not sent.
	SubjectID uuid.UUID
	Content   string
}

// currentRequest is the body accepted by the current service API.
type currentRequest struct {
	Content string `json:"content"`
}

// legacyRequest is the body accepted by the older service API.
type legacyRequest struct {
	Diary string `json:"diary"`
}

// vadPayload is the wire form of a VAD score.
type vadPayload struct {
	V float64 `json:"v" validate:"gte=1,lte=9"`
	A float64 `json:"a" validate:"gte=1,lte=9"`
	D float64 `json:"d" validate:"gte=1,lte=9"`
}

// responsePayload is the union of both response shapes. Pointers tell
// "absent" apart from zero.
type responsePayload struct {
	VAD             *vadPayload `json:"vad_score" validate:"omitempty"`
	DepressionScore *int        `json:"depression_score" validate:"omitempty,gte=0,lte=100"`
	Classification  string      `json:"classification"`

	OverallAverageWeight *int `json:"overall_average_weight" validate:"omitempty,gte=0,lte=10"`
}

func (p responsePayload) isCurrent() bool {
	return p.DepressionScore != nil
}

func (p responsePayload) isLegacy() bool {
	return p.OverallAverageWeight != nil
}

// toResult converts a validated payload. The current shape wins when a body
// somehow carries both.
func (p responsePayload) toResult() domain.AnalysisResult {
	if p.isCurrent() {
		result := domain.AnalysisResult{
			DepressionScore: *p.DepressionScore,
			Classification:  p.Classification,
		}
		if p.VAD != nil {
			result.VAD = &domain.VADScore{V: p.VAD.V, A: p.VAD.A, D: p.VAD.D}
		}
		return result
	}
	return domain.AnalysisResult{DepressionScore: *p.OverallAverageWeight * 10}
}
