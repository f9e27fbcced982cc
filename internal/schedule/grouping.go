package schedule

import (
	"sort"
	"time"

	"clinic-service/internal/models"
)

// DefaultWindowDays is the look-ahead window patients see when booking.
const DefaultWindowDays = 10

// DayBucket holds the schedules of one calendar day, ordered by start time.
// Buckets are derived on every query and never persisted.
type DayBucket struct {
	Key       string
	Schedules []models.Schedule
}

// GroupByDay distributes schedules into exactly windowDays consecutive day
// buckets starting at windowStart's day. Days without schedules yield empty
// buckets rather than being omitted. Schedules whose day falls outside the
// window are dropped. Within a bucket ordering is ascending by start time,
// stable on equal starts.
func GroupByDay(schedules []models.Schedule, windowStart time.Time, windowDays int) []DayBucket {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	first := StartOfDay(windowStart)

	buckets := make([]DayBucket, windowDays)
	index := make(map[string]int, windowDays)
	for i := range buckets {
		key := DayKey(first.AddDate(0, 0, i))
		buckets[i] = DayBucket{Key: key}
		index[key] = i
	}

	for _, s := range schedules {
		i, ok := index[DayKey(s.Start)]
		if !ok {
			continue
		}
		buckets[i].Schedules = append(buckets[i].Schedules, s)
	}

	for i := range buckets {
		bs := buckets[i].Schedules
		sort.SliceStable(bs, func(a, b int) bool {
			return bs[a].Start.Before(bs[b].Start)
		})
	}

	return buckets
}
