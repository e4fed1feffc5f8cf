package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/analysis"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/config"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer starts a fake analysis service. The handler receives the
// decoded request body.
func newTestServer(t *testing.T, handler func(w http.ResponseWriter, body map[string]string)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		handler(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL, variant string, timeout time.Duration) *analysis.Client {
	t.Helper()
	c, err := analysis.NewClient(config.AnalysisConfig{
		BaseURL:    baseURL,
		Timeout:    timeout,
		APIVariant: variant,
	}, testLogger())
	require.NoError(t, err)
	return c
}

func request(content string) analysis.Request {
	return analysis.Request{SubjectID: uuid.New(), Content: content}
}

func TestAnalyze_CurrentShape(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, body map[string]string) {
		assert.Equal(t, "I feel tired", body["content"])
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w,
			`{"vad_score":{"v":3.5,"a":4.0,"d":2.25},"depression_score":64,"classification":"moderate"}`)
	})

	c := newClient(t, srv.URL, config.AnalysisVariantCurrent, time.Second)
	result, err := c.Analyze(context.Background(), request("I feel tired"))
	require.NoError(t, err)

	assert.Equal(t, 64, result.DepressionScore)
	assert.Equal(t, "moderate", result.Classification)
	require.NotNil(t, result.VAD)
	assert.Equal(t, domain.VADScore{V: 3.5, A: 4.0, D: 2.25}, *result.VAD)
}

func TestAnalyze_LongClassificationAccepted(t *testing.T) {
	label := strings.Repeat("persistent low mood ", 10)
	srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]string) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"vad_score":        map[string]float64{"v": 2, "a": 3, "d": 2},
			"depression_score": 81,
			"classification":   label,
		})
	})

	c := newClient(t, srv.URL, config.AnalysisVariantCurrent, time.Second)
	result, err := c.Analyze(context.Background(), request("I feel tired"))
	require.NoError(t, err)
	assert.Equal(t, 81, result.DepressionScore)
	assert.Equal(t, label, result.Classification)
}

func TestAnalyze_LegacyVariant(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, body map[string]string) {
		assert.Equal(t, "I feel tired", body["diary"])
		_, hasContent := body["content"]
		assert.False(t, hasContent)
		_, _ = io.WriteString(w, `{"overall_average_weight":7}`)
	})

	c := newClient(t, srv.URL+"/", config.AnalysisVariantLegacy, time.Second)
	result, err := c.Analyze(context.Background(), request("I feel tired"))
	require.NoError(t, err)

	assert.Equal(t, 70, result.DepressionScore)
	assert.Nil(t, result.VAD)
	assert.Empty(t, result.Classification)
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, analysis.ErrUnexpectedStatus},
		{"bad request", http.StatusBadRequest, ``, analysis.ErrUnexpectedStatus},
		{"malformed json", http.StatusOK, `{"depression_score":`, analysis.ErrInvalidResponse},
		{"unknown shape", http.StatusOK, `{"mood":"sad"}`, analysis.ErrInvalidResponse},
		{"score out of range", http.StatusOK, `{"depression_score":101}`, analysis.ErrInvalidResponse},
		{"negative score", http.StatusOK, `{"depression_score":-2}`, analysis.ErrInvalidResponse},
		{"vad out of range", http.StatusOK, `{"vad_score":{"v":0,"a":5,"d":5},"depression_score":10}`, analysis.ErrInvalidResponse},
		{"legacy weight out of range", http.StatusOK, `{"overall_average_weight":11}`, analysis.ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]string) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			c := newClient(t, srv.URL, "", time.Second)
			_, err := c.Analyze(context.Background(), request("text"))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.True(t, errors.Is(err, analysis.ErrClient), "every failure wraps ErrClient")
		})
	}
}

func TestAnalyze_StatusErrorCarriesCode(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]string) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	c := newClient(t, srv.URL, "", time.Second)
	_, err := c.Analyze(context.Background(), request("text"))

	var statusErr *analysis.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
}

func TestAnalyze_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]string) {
		<-release
	})
	defer close(release)

	c := newClient(t, srv.URL, "", 50*time.Millisecond)
	start := time.Now()
	_, err := c.Analyze(context.Background(), request("text"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, analysis.ErrTransport), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestAnalyze_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newClient(t, url, "", time.Second)
	_, err := c.Analyze(context.Background(), request("text"))
	assert.True(t, errors.Is(err, analysis.ErrTransport), "got %v", err)
}

func TestAnalyze_NoInternalRetry(t *testing.T) {
	var calls atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, _ map[string]string) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	c := newClient(t, srv.URL, "", time.Second)
	_, err := c.Analyze(context.Background(), request("text"))
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAnalyze_EmptyContent(t *testing.T) {
	c := newClient(t, "http://127.0.0.1:1", "", time.Second)
	_, err := c.Analyze(context.Background(), request(""))
	assert.True(t, errors.Is(err, analysis.ErrInvalidRequest))
	assert.True(t, errors.Is(err, analysis.ErrClient))
}

func TestNewClient_Validation(t *testing.T) {
	_, err := analysis.NewClient(config.AnalysisConfig{BaseURL: "http://x"}, nil)
	assert.Error(t, err)

	_, err = analysis.NewClient(config.AnalysisConfig{}, testLogger())
	assert.True(t, errors.Is(err, analysis.ErrInvalidConfig))

	_, err = analysis.NewClient(config.AnalysisConfig{BaseURL: "http://x", APIVariant: "v3"}, testLogger())
	assert.True(t, errors.Is(err, analysis.ErrInvalidConfig))

	c, err := analysis.NewClient(config.AnalysisConfig{BaseURL: "http://x", Timeout: -1}, testLogger())
	require.NoError(t, err)
	assert.NotNil(t, c)
}
