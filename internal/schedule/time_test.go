package schedule

import (
	"testing"
	"time"

	"clinic-service/internal/models"
)

func TestDayKeyIgnoresTimeOfDay(t *testing.T) {
	day := "2024-06-01"
	for _, tt := range []time.Time{
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 12, 30, 45, 0, time.UTC),
		time.Date(2024, 6, 1, 23, 59, 59, 0, time.UTC),
	} {
		if got := DayKey(tt); got != day {
			t.Errorf("DayKey(%v) = %q, want %q", tt, got, day)
		}
	}
}

func TestDayKeyUsesUTC(t *testing.T) {
	// 23:30 on 2024-06-01 in UTC+7 is 16:30 UTC the same day; 02:00 in UTC+7
	// is still 2024-05-31 in UTC. One zone basis, applied uniformly.
	plus7 := time.FixedZone("UTC+7", 7*3600)

	if got := DayKey(time.Date(2024, 6, 1, 23, 30, 0, 0, plus7)); got != "2024-06-01" {
		t.Errorf("DayKey evening = %q, want 2024-06-01", got)
	}
	if got := DayKey(time.Date(2024, 6, 1, 2, 0, 0, 0, plus7)); got != "2024-05-31" {
		t.Errorf("DayKey early morning = %q, want 2024-05-31", got)
	}
}

func TestIsPast(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"before now", now.Add(-time.Minute), true},
		{"exactly now", now, true},
		{"after now", now.Add(time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsPast(tt.at, now); got != tt.want {
				t.Errorf("IsPast(%v, %v) = %v, want %v", tt.at, now, got, tt.want)
			}
		})
	}
}

func TestTruncateToHour(t *testing.T) {
	in := time.Date(2024, 6, 1, 9, 37, 12, 999, time.UTC)
	want := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	got := TruncateToHour(in)
	if !got.Equal(want) {
		t.Fatalf("TruncateToHour(%v) = %v, want %v", in, got, want)
	}

	if again := TruncateToHour(got); !again.Equal(got) {
		t.Fatalf("TruncateToHour not idempotent: %v -> %v", got, again)
	}
}

func TestFormatTimeRange(t *testing.T) {
	s := models.Schedule{
		Start: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}

	if got, want := FormatTimeRange(s), "09:00 - 10:00"; got != want {
		t.Errorf("FormatTimeRange = %q, want %q", got, want)
	}
}
