package schedule

import (
	"fmt"
	"time"

	"clinic-service/internal/models"
)

// All day arithmetic in this package is done in UTC. The clinic schedules by
// the hour, so sub-hour components are noise everywhere below the bucket
// level; TruncateToHour strips them.

const dayKeyLayout = "2006-01-02"

// DayKey returns the canonical calendar-day identifier of an instant,
// independent of its time-of-day component.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

// IsPast reports whether t has been reached.
func IsPast(t, now time.Time) bool {
	return !t.After(now)
}

// TruncateToHour zeroes minutes, seconds and nanoseconds.
func TruncateToHour(t time.Time) time.Time {
	return t.Truncate(time.Hour)
}

// StartOfDay returns UTC midnight of the instant's day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func FormatTimeRange(s models.Schedule) string {
	return fmt.Sprintf("%s - %s", s.Start.UTC().Format("15:04"), s.End.UTC().Format("15:04"))
}
