package timescale

import (
	"fmt"
	"time"
)

// maxHourMarks caps gridline generation for absurdly long domains.
const maxHourMarks = 24 * 400

// HourMarks returns the whole hours in [start, end]. The first mark is start
// itself when it already sits on the hour, otherwise the next whole hour in
// start's location.
func HourMarks(start, end time.Time) []time.Time {
	if end.Before(start) {
		return nil
	}
	current := time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), 0, 0, 0, start.Location())
	if current.Before(start) {
		current = current.Add(time.Hour)
	}
	var marks []time.Time
	for !current.After(end) && len(marks) < maxHourMarks {
		marks = append(marks, current)
		current = current.Add(time.Hour)
	}
	return marks
}

// FormatHHMMSS renders t as a compact six digit clock, e.g. "064500".
func FormatHHMMSS(t time.Time) string {
	return t.Format("150405")
}

// FormatDuration renders the rounded minutes between start and end as
// "2h 5m", "45m" or "3h".
func FormatDuration(start, end time.Time) string {
	total := int(end.Sub(start).Round(time.Minute) / time.Minute)
	hours := total / 60
	minutes := total % 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", minutes)
	case minutes == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
}
