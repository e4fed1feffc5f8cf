package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/systemfile36/DiaryMoodAnalyzer-sub000/internal/domain"
)

// getPathUUID extracts a UUID from the URL path parameters.
// It returns an error wrapping domain.ErrInvalidID if the parameter is
// missing or malformed.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", domain.ErrInvalidID, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", domain.ErrInvalidID, paramName)
	}

	return id, nil
}

// getDateRange reads the optional start and end query parameters
// (YYYY-MM-DD). A missing parameter leaves that side of the range open.
func getDateRange(r *http.Request) (domain.DateRange, error) {
	var dr domain.DateRange
	q := r.URL.Query()

	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"start", &dr.Start},
		{"end", &dr.End},
	} {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		t, err := time.ParseInLocation(domain.DateLayout, raw, time.UTC)
		if err != nil {
			return domain.DateRange{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", domain.ErrInvalidDateRange, p.name)
		}
		*p.dst = t
	}

	return dr, dr.Validate()
}
