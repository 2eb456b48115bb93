package report

import (
	"errors"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")
	ErrWindowOrder = errors.New("from_date must be before or equal to to_date")
)

// Window is the inclusive calendar-date range a report covers.
type Window struct {
	From time.Time
	To   time.Time
}

// ParseWindow validates and parses an ISO date pair before any fetch runs.
func ParseWindow(from, to string) (Window, error) {
	f, err := time.ParseInLocation(dateLayout, from, time.UTC)
	if err != nil { return Window{}, ErrInvalidDate }
	t, err := time.ParseInLocation(dateLayout, to, time.UTC)
	if err != nil { return Window{}, ErrInvalidDate }
	if f.After(t) { return Window{}, ErrWindowOrder }
	return Window{From: f, To: t}, nil
}

func (w Window) FromDate() string { return w.From.Format(dateLayout) }
func (w Window) ToDate() string   { return w.To.Format(dateLayout) }

// end is the first instant past the window: midnight after the to-date.
// Both boundaries are inclusive; 23:59:59 on the to-date is in, the next
// second is out.
func (w Window) end() time.Time { return w.To.AddDate(0, 0, 1) }

// Contains reports whether a naive UTC timestamp falls inside [from, to].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.From) && t.Before(w.end())
}

// ContainsRecentlyClosed reports whether a timestamp falls within the 30
// days leading up to (and including) the to-date. Used to capture work
// finished near the window without being re-touched inside it.
func (w Window) ContainsRecentlyClosed(t time.Time) bool {
	cutoff := w.To.AddDate(0, 0, -30)
	return !t.Before(cutoff) && t.Before(w.end())
}

// CurrentWeek computes the Monday-Sunday window containing now.
func CurrentWeek(now time.Time) Window {
	weekday := int(now.Weekday())
	if weekday == 0 { weekday = 7 }
	monday := now.AddDate(0, 0, -(weekday - 1))
	from := time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
	return Window{From: from, To: from.AddDate(0, 0, 6)}
}

// PreviousWeek computes the Monday-Sunday window before the one containing now.
func PreviousWeek(now time.Time) Window {
	w := CurrentWeek(now)
	return Window{From: w.From.AddDate(0, 0, -7), To: w.To.AddDate(0, 0, -7)}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// parseNaiveUTC parses an API timestamp and strips the timezone offset,
// keeping the stated wall-clock components as naive UTC. Window comparison
// is defined over these naive values.
func parseNaiveUTC(s string) (time.Time, error) {
	var t time.Time
	var err error
	for _, layout := range timestampLayouts {
		t, err = time.Parse(layout, s)
		if err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC), nil
		}
	}
	return time.Time{}, err
}
