package store

import (
	"database/sql"
	"time"

	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
)

// AnalysisColumns is the column-level form of a diary's analysis fields.
// The VAD triple is either fully set or fully NULL.
type AnalysisColumns struct {
	Score          int
	VADV           sql.NullFloat64
	VADA           sql.NullFloat64
	VADD           sql.NullFloat64
	Classification sql.NullString
	AnalyzedAt     sql.NullTime
}

// AnalysisColumnsFromDiary converts the analysis fields of d for writing.
func AnalysisColumnsFromDiary(d *domain.Diary) AnalysisColumns {
	c := AnalysisColumns{Score: d.DepressionScore}
	if d.VAD != nil {
		c.VADV = sql.NullFloat64{Float64: d.VAD.V, Valid: true}
		c.VADA = sql.NullFloat64{Float64: d.VAD.A, Valid: true}
		c.VADD = sql.NullFloat64{Float64: d.VAD.D, Valid: true}
	}
	if d.Classification != "" {
		c.Classification = sql.NullString{String: d.Classification, Valid: true}
	}
	if d.AnalyzedAt != nil {
		c.AnalyzedAt = sql.NullTime{Time: d.AnalyzedAt.UTC(), Valid: true}
	}
	return c
}

// AnalysisColumnsFromOutcome returns the columns written when outcome resolves at the given time.
// The outcome must already be valid.
func AnalysisColumnsFromOutcome(outcome domain.AnalysisOutcome, at time.Time) AnalysisColumns {
	var d domain.Diary
	_ = d.ApplyOutcome(outcome, at)
	return AnalysisColumnsFromDiary(&d)
}

// ApplyTo copies the scanned columns onto d.
func (c AnalysisColumns) ApplyTo(d *domain.Diary) {
	d.DepressionScore = c.Score
	d.VAD = nil
	if c.VADV.Valid && c.VADA.Valid && c.VADD.Valid {
		d.VAD = &domain.VADScore{V: c.VADV.Float64, A: c.VADA.Float64, D: c.VADD.Float64}
	}
	d.Classification = ""
	if c.Classification.Valid {
		d.Classification = c.Classification.String
	}
	d.AnalyzedAt = nil
	if c.AnalyzedAt.Valid {
		at := c.AnalyzedAt.Time.UTC()
		d.AnalyzedAt = &at
	}
}

// DayUpperBound returns the exclusive upper bound for an inclusive end day.
// A zero end yields a zero time.
func DayUpperBound(end time.Time) time.Time {
	if end.IsZero() {
		return end
	}
	y, m, d := end.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
}
