package datewindow

import (
	"fmt"
	"time"
)

// DayFormat is the wire format the upstream provider uses for date
// range parameters.
const DayFormat = "2006-01-02"

// Window is an inclusive [Start, End] date range.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) StartDay() string {
	return w.Start.Format(DayFormat)
}

func (w Window) EndDay() string {
	return w.End.Format(DayFormat)
}

func (w Window) String() string {
	return w.StartDay() + " to " + w.EndDay()
}

// Days reports the inclusive day count of the window.
func (w Window) Days() int {
	return int(truncateDay(w.End).Sub(truncateDay(w.Start))/(24*time.Hour)) + 1
}

// Split partitions an inclusive [start, end] range into ordered,
// contiguous windows of at most maxDays days each. A range that
// already fits yields a single window equal to the input. start after
// end is rejected.
func Split(start, end time.Time, maxDays int) ([]Window, error) {
	if maxDays < 1 {
		return nil, fmt.Errorf("max window size must be at least 1 day, got %d", maxDays)
	}

	start = truncateDay(start)
	end = truncateDay(end)
	if start.After(end) {
		return nil, fmt.Errorf("start date %s is after end date %s", start.Format(DayFormat), end.Format(DayFormat))
	}

	windows := make([]Window, 0, 1)
	for current := start; !current.After(end); {
		windowEnd := current.AddDate(0, 0, maxDays-1)
		if windowEnd.After(end) {
			windowEnd = end
		}
		windows = append(windows, Window{Start: current, End: windowEnd})
		current = windowEnd.AddDate(0, 0, 1)
	}

	return windows, nil
}

// ParseDay parses an upstream day string.
func ParseDay(value string) (time.Time, error) {
	parsed, err := time.Parse(DayFormat, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return parsed, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
