package schedule

import (
	"errors"

	"clinic-service/internal/models"
)

var ErrInvalidTransition = errors.New("status transition is not allowed")

// allowedTransitions is the booking status machine: a booking starts Pending,
// is accepted or rejected, an accepted booking completes as Done or is
// rejected late, and a rejected booking can be reinstated. Done is terminal.
var allowedTransitions = map[models.BookingStatus][]models.BookingStatus{
	models.BookingPending: {models.BookingAccept, models.BookingReject},
	models.BookingAccept:  {models.BookingDone, models.BookingReject},
	models.BookingReject:  {models.BookingAccept},
	models.BookingDone:    {},
}

// TransitionBooking validates a status change and returns the seat adjustment
// it causes: -1 when the booking moves into Reject, +1 when it moves out of
// Reject, 0 otherwise. A booking holds its seat in every status except
// Reject, so the adjustment fires exactly once per direction no matter how
// often the same change is retried: a repeated change is refused, never
// re-applied.
func TransitionBooking(current, next models.BookingStatus) (int, error) {
	for _, allowed := range allowedTransitions[current] {
		if next != allowed {
			continue
		}

		switch {
		case next == models.BookingReject:
			return -1, nil
		case current == models.BookingReject:
			return +1, nil
		}
		return 0, nil
	}

	return 0, ErrInvalidTransition
}
