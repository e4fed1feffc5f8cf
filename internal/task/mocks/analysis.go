// Package mocks provides mock implementations for testing task components.
package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/analysis"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
)

// Analyzer is a mock implementation of task.Analyzer that records calls.
type Analyzer struct {
	AnalyzeFn func(ctx context.Context, req analysis.Request) (domain.AnalysisResult, error)

	mu    sync.Mutex
	calls []analysis.Request
}

// Analyze implements task.Analyzer
func (m *Analyzer) Analyze(ctx context.Context, req analysis.Request) (domain.AnalysisResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.AnalyzeFn != nil {
		return m.AnalyzeFn(ctx, req)
	}
	return domain.AnalysisResult{}, nil
}

// Calls returns a copy of every request received so far.
func (m *Analyzer) Calls() []analysis.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]analysis.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor counts the requests made for one subject.
func (m *Analyzer) CallsFor(subjectID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.SubjectID == subjectID {
			n++
		}
	}
	return n
}

// AppliedOutcome is one call recorded by ResultSink.
type AppliedOutcome struct {
	SubjectID uuid.UUID
	Outcome   domain.AnalysisOutcome
}

// ResultSink is a mock implementation of task.ResultSink that records outcomes.
type ResultSink struct {
	ApplyFn func(ctx context.Context, subjectID uuid.UUID, outcome domain.AnalysisOutcome) error

	mu      sync.Mutex
	applied []AppliedOutcome
}

// Apply implements task.ResultSink
func (m *ResultSink) Apply(ctx context.Context, subjectID uuid.UUID, outcome domain.AnalysisOutcome) error {
	m.mu.Lock()
	m.applied = append(m.applied, AppliedOutcome{SubjectID: subjectID, Outcome: outcome})
	m.mu.Unlock()

	if m.ApplyFn != nil {
		return m.ApplyFn(ctx, subjectID, outcome)
	}
	return nil
}

// Applied returns a copy of every outcome received so far.
func (m *ResultSink) Applied() []AppliedOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AppliedOutcome, len(m.applied))
	copy(out, m.applied)
	return out
}

// AppliedFor returns the outcomes received for one subject.
func (m *ResultSink) AppliedFor(subjectID uuid.UUID) []domain.AnalysisOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AnalysisOutcome
	for _, a := range m.applied {
		if a.SubjectID == subjectID {
			out = append(out, a.Outcome)
		}
	}
	return out
}
