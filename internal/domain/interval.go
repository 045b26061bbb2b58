package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for rental dates.
const DateLayout = "2006-01-02"

// Interval is a half-open date range [Start, End). Both bounds are
// normalized to midnight UTC; End is the day the item becomes free again.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewInterval builds a validated interval from two dates.
func NewInterval(start, end time.Time) (Interval, error) {
	iv := Interval{Start: Midnight(start), End: Midnight(end)}
	if err := iv.Validate(); err != nil {
		return Interval{}, err
	}
	return iv, nil
}

// ParseInterval parses an interval from two YYYY-MM-DD strings.
func ParseInterval(start, end string) (Interval, error) {
	s, err := time.ParseInLocation(DateLayout, start, time.UTC)
	if err != nil {
		return Interval{}, NewValidationError("start", "must be a date in YYYY-MM-DD format")
	}
	e, err := time.ParseInLocation(DateLayout, end, time.UTC)
	if err != nil {
		return Interval{}, NewValidationError("end", "must be a date in YYYY-MM-DD format")
	}
	return NewInterval(s, e)
}

// Validate checks the start < end invariant.
func (iv Interval) Validate() error {
	if !iv.Start.Before(iv.End) {
		return NewValidationError("interval", "start date must be before end date")
	}
	return nil
}

// Overlaps reports whether two half-open intervals intersect:
// [a,b) and [c,d) overlap iff a < d && c < b.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Days returns the length of the interval in whole days.
func (iv Interval) Days() int32 {
	return int32(iv.End.Sub(iv.Start).Hours() / 24)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(DateLayout), iv.End.Format(DateLayout))
}

// Midnight truncates a timestamp to midnight UTC.
func Midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
