package domain

import (
	"fmt"
	"time"
)

// DateLayout is the day format used for statistics keys and query parameters.
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of calendar days. A zero Start or End
// leaves that side unbounded.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate rejects ranges whose end precedes their start.
func (r DateRange) Validate() error {
	if !r.Start.IsZero() && !r.End.IsZero() && r.End.Before(r.Start) {
		return fmt.Errorf("%w: end %s is before start %s",
			ErrInvalidDateRange, r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}
	return nil
}

// DailyAverage is the mean depression score of one user's analyzed diaries
// created on a single day. Diaries holding a sentinel score are excluded.
type DailyAverage struct {
	Day     string  `json:"day"`
	Average float64 `json:"average"`
}
