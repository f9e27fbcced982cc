package schedule

import (
	"time"

	"clinic-service/internal/models"
)

type SlotStatus string

const (
	SlotOpen SlotStatus = "Open"
	SlotFull SlotStatus = "Full"
	SlotPast SlotStatus = "Past"
)

type DayStatus string

const (
	DayNoSlots         DayStatus = "NoSlots"
	DayFullyBooked     DayStatus = "FullyBooked"
	DayHasAvailability DayStatus = "HasAvailability"
)

// SlotState derives the booking state of one schedule. A schedule stops being
// bookable the moment its start time is reached, regardless of end time or
// occupancy, so past-ness is checked before fullness.
func SlotState(s models.Schedule, now time.Time) SlotStatus {
	if IsPast(s.Start, now) {
		return SlotPast
	}
	if s.SumBooking >= s.MaxBooking {
		return SlotFull
	}
	return SlotOpen
}

// Remaining returns the seats still open on a schedule, never negative.
func Remaining(s models.Schedule) int {
	r := s.MaxBooking - s.SumBooking
	if r < 0 {
		return 0
	}
	return r
}

// DayState derives the aggregate state of a bucket. FullyBooked is evaluated
// on booking counters alone: a day whose slots are all in the past but were
// never filled still reports HasAvailability.
func DayState(b DayBucket) DayStatus {
	if len(b.Schedules) == 0 {
		return DayNoSlots
	}
	for _, s := range b.Schedules {
		if s.SumBooking < s.MaxBooking {
			return DayHasAvailability
		}
	}
	return DayFullyBooked
}
