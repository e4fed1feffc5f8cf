package domain

import (
	"errors"
	"testing"
)

func TestLevelForScore(t *testing.T) {
	t.Parallel()
	cases := map[int]int{
		ScoreError:       ScoreError,
		ScoreNotAnalyzed: ScoreNotAnalyzed,
		0:                0,
		9:                0,
		10:               1,
		55:               5,
		99:               9,
		100:              10,
	}
	for score, want := range cases {
		if got := LevelForScore(score); got != want {
			t.Errorf("LevelForScore(%d) = %d, want %d", score, got, want)
		}
	}
}

func TestStateForScore(t *testing.T) {
	t.Parallel()
	if StateForScore(ScoreNotAnalyzed) != AnalysisStatePending {
		t.Error("Expected pending for not analyzed score")
	}
	if StateForScore(ScoreError) != AnalysisStateFailed {
		t.Error("Expected failed for error score")
	}
	if StateForScore(0) != AnalysisStateAnalyzed {
		t.Error("Expected analyzed for zero score")
	}
}

func TestAnalysisOutcomeValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		outcome AnalysisOutcome
		wantErr error
	}{
		{"success", SuccessOutcome(AnalysisResult{DepressionScore: 50}), nil},
		{"success with vad", SuccessOutcome(AnalysisResult{DepressionScore: 0, VAD: &VADScore{1, 9, 5}}), nil},
		{"error", ErrorOutcome(), nil},
		{"zero value", AnalysisOutcome{}, ErrInvalidOutcome},
		{"error with wrong code", AnalysisOutcome{Kind: OutcomeError, Code: -1}, ErrInvalidOutcome},
		{"sentinel score as success", SuccessOutcome(AnalysisResult{DepressionScore: ScoreError}), ErrScoreOutOfRange},
		{"vad out of range", SuccessOutcome(AnalysisResult{DepressionScore: 10, VAD: &VADScore{0.5, 2, 2}}), ErrVADOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.outcome.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestAnalysisOutcomeScore(t *testing.T) {
	t.Parallel()
	if got := SuccessOutcome(AnalysisResult{DepressionScore: 12}).Score(); got != 12 {
		t.Errorf("Expected 12, got %d", got)
	}
	if got := ErrorOutcome().Score(); got != ScoreError {
		t.Errorf("Expected %d, got %d", ScoreError, got)
	}
	if ErrorOutcome().IsSuccess() {
		t.Error("Error outcome must not report success")
	}
	if OutcomeSuccess.String() != "success" || OutcomeError.String() != "error" {
		t.Error("Unexpected outcome kind names")
	}
}
