package domain

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxDiaryTitleLength bounds a diary title in characters.
const MaxDiaryTitleLength = 255

// Common validation errors for Diary
var (
	ErrEmptyDiaryID      = errors.New("diary ID cannot be empty")
	ErrEmptyDiaryUserID  = errors.New("diary user ID cannot be empty")
	ErrEmptyDiaryTitle   = errors.New("diary title cannot be empty")
	ErrDiaryTitleTooLong = errors.New("diary title is too long")
	ErrEmptyDiaryContent = errors.New("diary content cannot be empty")
	ErrInvalidDiaryScore = errors.New("invalid diary depression score")
)

// Diary is a user's journal entry together with the result of its mood
// analysis. The analysis fields are written only through ApplyOutcome.
type Diary struct {
	ID      uuid.UUID `json:"id"`
	UserID  uuid.UUID `json:"user_id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`

	// DepressionScore is ScoreNotAnalyzed, ScoreError, or a value in [MinScore, MaxScore].
	DepressionScore int        `json:"depression_score"`
	VAD             *VADScore  `json:"vad_score,omitempty"`
	Classification  string     `json:"classification,omitempty"`
	AnalyzedAt      *time.Time `json:"analyzed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDiary creates a new, not yet analyzed Diary owned by userID.
// Returns an error if validation fails.
func NewDiary(userID uuid.UUID, title, content string) (*Diary, error) {
	now := time.Now().UTC()
	diary := &Diary{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           title,
		Content:         content,
		DepressionScore: ScoreNotAnalyzed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := diary.Validate(); err != nil {
		return nil, err
	}

	return diary, nil
}

// Validate checks if the Diary has valid data.
func (d *Diary) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDiaryID
	}
	if d.UserID == uuid.Nil {
		return ErrEmptyDiaryUserID
	}
	if d.Title == "" {
		return ErrEmptyDiaryTitle
	}
	if utf8.RuneCountInString(d.Title) > MaxDiaryTitleLength {
		return ErrDiaryTitleTooLong
	}
	if d.Content == "" {
		return ErrEmptyDiaryContent
	}
	if !isValidStoredScore(d.DepressionScore) {
		return ErrInvalidDiaryScore
	}
	return nil
}

// Edit replaces the title and content and resets the analysis fields, since
// the previous result no longer describes the text.
func (d *Diary) Edit(title, content string) error {
	edited := *d
	edited.Title = title
	edited.Content = content
	if err := edited.Validate(); err != nil {
		return err
	}

	d.Title = title
	d.Content = content
	d.ResetAnalysis()
	return nil
}

// ApplyOutcome overwrites the analysis fields with the given outcome.
func (d *Diary) ApplyOutcome(outcome AnalysisOutcome, at time.Time) error {
	if err := outcome.Validate(); err != nil {
		return err
	}

	analyzedAt := at.UTC()
	switch outcome.Kind {
	case OutcomeSuccess:
		d.DepressionScore = outcome.Result.DepressionScore
		d.VAD = outcome.Result.VAD
		d.Classification = outcome.Result.Classification
	case OutcomeError:
		d.DepressionScore = ScoreError
		d.VAD = nil
		d.Classification = ""
	}
	d.AnalyzedAt = &analyzedAt
	return nil
}

// AnalysisState reports whether the diary is pending, failed or analyzed.
func (d *Diary) AnalysisState() AnalysisState {
	return StateForScore(d.DepressionScore)
}

// DepressionLevel returns the legacy 0..10 level for the current score.
func (d *Diary) DepressionLevel() int {
	return LevelForScore(d.DepressionScore)
}

// ResetAnalysis returns the diary to the not-yet-analyzed state so it can be
// submitted again.
func (d *Diary) ResetAnalysis() {
	d.DepressionScore = ScoreNotAnalyzed
	d.VAD = nil
	d.Classification = ""
	d.AnalyzedAt = nil
	d.UpdatedAt = time.Now().UTC()
}

func isValidStoredScore(score int) bool {
	return score == ScoreError || score == ScoreNotAnalyzed ||
		(score >= MinScore && score <= MaxScore)
}
