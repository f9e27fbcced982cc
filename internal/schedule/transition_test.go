package schedule

import (
	"errors"
	"testing"

	"clinic-service/internal/models"
)

func TestTransitionBooking(t *testing.T) {
	tests := []struct {
		name      string
		current   models.BookingStatus
		next      models.BookingStatus
		wantDelta int
		wantErr   bool
	}{
		{"pending accepted", models.BookingPending, models.BookingAccept, 0, false},
		{"pending rejected frees seat", models.BookingPending, models.BookingReject, -1, false},
		{"accepted completed", models.BookingAccept, models.BookingDone, 0, false},
		{"accepted rejected late frees seat", models.BookingAccept, models.BookingReject, -1, false},
		{"rejected reinstated retakes seat", models.BookingReject, models.BookingAccept, +1, false},
		{"pending to done skips acceptance", models.BookingPending, models.BookingDone, 0, true},
		{"rejected to done", models.BookingReject, models.BookingDone, 0, true},
		{"done is terminal", models.BookingDone, models.BookingAccept, 0, true},
		{"repeated reject refused", models.BookingReject, models.BookingReject, 0, true},
		{"repeated accept refused", models.BookingAccept, models.BookingAccept, 0, true},
		{"no-op pending refused", models.BookingPending, models.BookingPending, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, err := TransitionBooking(tt.current, tt.next)

			if tt.wantErr {
				if !errors.Is(err, ErrInvalidTransition) {
					t.Fatalf("TransitionBooking(%s, %s) error = %v, want ErrInvalidTransition", tt.current, tt.next, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("TransitionBooking(%s, %s) error = %v", tt.current, tt.next, err)
			}
			if delta != tt.wantDelta {
				t.Errorf("TransitionBooking(%s, %s) delta = %d, want %d", tt.current, tt.next, delta, tt.wantDelta)
			}
		})
	}
}

// A full reject/reinstate cycle nets to zero: the seat is freed once and
// retaken once regardless of how the statuses are replayed.
func TestTransitionBookingRejectCycleNetsZero(t *testing.T) {
	sum := 0

	steps := []struct {
		current models.BookingStatus
		next    models.BookingStatus
	}{
		{models.BookingPending, models.BookingAccept},
		{models.BookingAccept, models.BookingReject},
		{models.BookingReject, models.BookingAccept},
		{models.BookingAccept, models.BookingDone},
	}

	for _, s := range steps {
		delta, err := TransitionBooking(s.current, s.next)
		if err != nil {
			t.Fatalf("TransitionBooking(%s, %s) error = %v", s.current, s.next, err)
		}
		sum += delta
	}

	if sum != 0 {
		t.Errorf("net seat adjustment = %d, want 0", sum)
	}
}
