package domain

import (
	"errors"
	"fmt"
	"time"
)

// DateFormat is the calendar-day layout used throughout the pipeline.
const DateFormat = "2006-01-02"

// ErrInvalidDateRange reports an end date before the start date.
var ErrInvalidDateRange = errors.New("end date is before start date")

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses "YYYY-MM-DD" start and end dates and validates that
// the range is not inverted.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.ParseInLocation(DateFormat, start, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse start date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(DateFormat, end, time.UTC)
	if err != nil {
		return DateRange{}, fmt.Errorf("parse end date %q: %w", end, err)
	}
	r := DateRange{Start: s, End: e}
	if e.Before(s) {
		return r, ErrInvalidDateRange
	}
	return r, nil
}

// Days expands the range into its daily "YYYY-MM-DD" sequence, inclusive of
// both endpoints.
func (r DateRange) Days() []string {
	var days []string
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateFormat))
	}
	return days
}

// Compact renders the endpoints as "YYYYMMDD" for output file naming.
func (r DateRange) Compact() (start, end string) {
	return r.Start.Format("20060102"), r.End.Format("20060102")
}
