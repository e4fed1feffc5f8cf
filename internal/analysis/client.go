package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/config"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/platform/logger"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/redact"
)

const (
	analyzePath = "/analyze"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 1 << 20

	// DefaultTimeout is used when the configured timeout is not positive.
	DefaultTimeout = 10 * time.Second
)

// Client calls the remote analysis service over HTTP.
type Client struct {
	baseURL    string
	variant    string
	timeout    time.Duration
	httpClient *http.Client
	validate   *validator.Validate
	logger     *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Client from the analysis configuration.
func NewClient(cfg config.AnalysisConfig, logger *slog.Logger, opts ...Option) (*Client, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: base URL cannot be empty", ErrInvalidConfig)
	}

	variant := cfg.APIVariant
	switch variant {
	case "":
		variant = config.AnalysisVariantCurrent
	case config.AnalysisVariantCurrent, config.AnalysisVariantLegacy:
	default:
		return nil, fmt.Errorf("%w: unknown API variant %q", ErrInvalidConfig, variant)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		logger.Warn("invalid analysis timeout, using default",
			"configured", cfg.Timeout,
			"default", DefaultTimeout)
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		variant:    variant,
		timeout:    timeout,
		httpClient: &http.Client{},
		validate:   validator.New(),
		logger:     logger.With("component", "analysis_client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Analyze sends req to {baseURL}/analyze and returns the decoded result.
// Every error wraps ErrClient.
func (c *Client) Analyze(ctx context.Context, req Request) (domain.AnalysisResult, error) {
	log := logger.FromContextOrDefault(ctx, c.logger).With(
		"subject_id", req.SubjectID.String(),
		"content", redact.Content(req.Content),
	)

	if req.Content == "" {
		return domain.AnalysisResult{}, fmt.Errorf("%w: content cannot be empty", ErrInvalidRequest)
	}

	body, err := c.encodeRequest(req)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, bytes.NewReader(body))
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debug("analysis request failed", "error", err, "elapsed", time.Since(start))
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		log.Debug("analysis service rejected request", "status", resp.StatusCode)
		return domain.AnalysisResult{}, &StatusError{StatusCode: resp.StatusCode}
	}

	result, err := c.decodeResponse(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		log.Debug("analysis response rejected", "error", err)
		return domain.AnalysisResult{}, err
	}

	log.Debug("analysis completed",
		"depression_score", result.DepressionScore,
		"elapsed", time.Since(start))
	return result, nil
}

func (c *Client) encodeRequest(req Request) ([]byte, error) {
	if c.variant == config.AnalysisVariantLegacy {
		return json.Marshal(legacyRequest{Diary: req.Content})
	}
	return json.Marshal(currentRequest{Content: req.Content})
}

func (c *Client) decodeResponse(r io.Reader) (domain.AnalysisResult, error) {
	var payload responsePayload
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: decode body: %v", ErrInvalidResponse, err)
	}

	if !payload.isCurrent() && !payload.isLegacy() {
		return domain.AnalysisResult{}, fmt.Errorf("%w: body matches no known response shape", ErrInvalidResponse)
	}

	if err := c.validate.Struct(payload); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	result := payload.toResult()
	if err := result.Validate(); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return result, nil
}
