package domain

import (
	"errors"
	"fmt"
)

// Reserved depression score values. Neither is ever produced by a successful
// analysis, so readers can tell "not yet analyzed" from "permanently failed"
// from a real result.
const (
	// ScoreError marks a diary whose analysis exhausted its retries.
	ScoreError = -2

	// ScoreNotAnalyzed marks a diary that has not been analyzed yet.
	ScoreNotAnalyzed = -1

	// MinScore and MaxScore bound a valid depression score.
	MinScore = 0
	MaxScore = 100

	// MaxLevel is the top of the legacy 0..10 depression level scale.
	MaxLevel = 10

	// MinVAD and MaxVAD bound each valence/arousal/dominance component.
	MinVAD = 1.0
	MaxVAD = 9.0
)

// Analysis validation errors
var (
	ErrScoreOutOfRange = errors.New("depression score out of range")
	ErrVADOutOfRange   = errors.New("vad score out of range")
	ErrInvalidOutcome  = errors.New("invalid analysis outcome")
)

// AnalysisState summarises where a diary is in its analysis lifecycle.
type AnalysisState string

// Possible analysis states, derived from the stored depression score.
const (
	AnalysisStatePending  AnalysisState = "pending"
	AnalysisStateFailed   AnalysisState = "failed"
	AnalysisStateAnalyzed AnalysisState = "analyzed"
)

// VADScore is the valence/arousal/dominance triple returned by the analysis service.
type VADScore struct {
	V float64 `json:"v"`
	A float64 `json:"a"`
	D float64 `json:"d"`
}

// Validate checks that every component lies within [MinVAD, MaxVAD].
func (s VADScore) Validate() error {
	for _, c := range []float64{s.V, s.A, s.D} {
		if c < MinVAD || c > MaxVAD {
			return fmt.Errorf("%w: %.2f", ErrVADOutOfRange, c)
		}
	}
	return nil
}

// AnalysisResult is the structured response of one successful remote analysis.
type AnalysisResult struct {
	// VAD is nil when the service answered with the legacy response shape.
	VAD             *VADScore `json:"vad_score,omitempty"`
	DepressionScore int       `json:"depression_score"`
	Classification  string    `json:"classification,omitempty"`
}

// Validate checks that the result carries only in-range values. A result
// holding a reserved sentinel score is rejected.
func (r AnalysisResult) Validate() error {
	if r.DepressionScore < MinScore || r.DepressionScore > MaxScore {
		return fmt.Errorf("%w: %d", ErrScoreOutOfRange, r.DepressionScore)
	}
	if r.VAD != nil {
		if err := r.VAD.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// OutcomeKind tags the variant held by an AnalysisOutcome.
type OutcomeKind int

const (
	// OutcomeUnknown is the zero value and never applied.
	OutcomeUnknown OutcomeKind = iota
	OutcomeSuccess
	OutcomeError
)

// String returns a log-friendly name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// AnalysisOutcome is the terminal resolution of an analysis task: either a
// successful result or the error sentinel.
type AnalysisOutcome struct {
	Kind   OutcomeKind
	Result AnalysisResult
	// Code is the score written for an error outcome (always ScoreError).
	Code int
}

// SuccessOutcome wraps a successful analysis result.
func SuccessOutcome(result AnalysisResult) AnalysisOutcome {
	return AnalysisOutcome{Kind: OutcomeSuccess, Result: result}
}

// ErrorOutcome is the outcome recorded when analysis permanently failed.
func ErrorOutcome() AnalysisOutcome {
	return AnalysisOutcome{Kind: OutcomeError, Code: ScoreError}
}

// IsSuccess reports whether the outcome carries a result.
func (o AnalysisOutcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess
}

// Score returns the depression score this outcome writes to the diary.
func (o AnalysisOutcome) Score() int {
	if o.Kind == OutcomeSuccess {
		return o.Result.DepressionScore
	}
	return ScoreError
}

// Validate rejects unknown outcome kinds and out-of-range success results.
func (o AnalysisOutcome) Validate() error {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Result.Validate()
	case OutcomeError:
		if o.Code != ScoreError {
			return fmt.Errorf("%w: error outcome with code %d", ErrInvalidOutcome, o.Code)
		}
		return nil
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidOutcome, o.Kind)
	}
}

// StateForScore derives the analysis state from a stored depression score.
func StateForScore(score int) AnalysisState {
	switch score {
	case ScoreNotAnalyzed:
		return AnalysisStatePending
	case ScoreError:
		return AnalysisStateFailed
	default:
		return AnalysisStateAnalyzed
	}
}

// LevelForScore converts a 0..100 score to the 0..10 depression level used by
// older clients. Sentinel scores map to themselves.
func LevelForScore(score int) int {
	if score < MinScore {
		return score
	}
	level := score / 10
	if level > MaxLevel {
		level = MaxLevel
	}
	return level
}
