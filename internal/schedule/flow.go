package schedule

import (
	"errors"
	"time"

	"clinic-service/internal/models"
)

type BookingStep string

const (
	StepChoosingSlot    BookingStep = "ChoosingSlot"
	StepEnteringDetails BookingStep = "EnteringDetails"
)

var (
	ErrUnknownDay      = errors.New("day is not in the booking window")
	ErrDayUnavailable  = errors.New("day has no availability")
	ErrUnknownSlot     = errors.New("slot does not belong to the selected day")
	ErrSlotUnavailable = errors.New("slot is not open")
	ErrNoSelection     = errors.New("a day and an open slot must be selected")
	ErrWrongStep       = errors.New("operation is not allowed in the current step")
)

// BookingFlow drives the two-step patient booking: pick a day and an open
// slot, then enter patient details. It holds no I/O and no rendering state,
// only the selection and the current step.
type BookingFlow struct {
	buckets []DayBucket
	step    BookingStep
	dayKey  string
	slot    *models.Schedule
}

func NewBookingFlow(buckets []DayBucket) *BookingFlow {
	return &BookingFlow{
		buckets: buckets,
		step:    StepChoosingSlot,
	}
}

func (f *BookingFlow) Step() BookingStep { return f.step }

func (f *BookingFlow) SelectedDay() string { return f.dayKey }

// SelectedSlot returns the chosen schedule, or nil when none is selected.
func (f *BookingFlow) SelectedSlot() *models.Schedule {
	if f.slot == nil {
		return nil
	}
	s := *f.slot
	return &s
}

// SelectDay picks a day from the window. Only days with availability are
// selectable. Picking a day clears any previously selected slot.
func (f *BookingFlow) SelectDay(dayKey string) error {
	if f.step != StepChoosingSlot {
		return ErrWrongStep
	}

	bucket, ok := f.bucket(dayKey)
	if !ok {
		return ErrUnknownDay
	}

	if DayState(bucket) != DayHasAvailability {
		return ErrDayUnavailable
	}

	f.dayKey = dayKey
	f.slot = nil

	return nil
}

// SelectSlot picks an open slot from the selected day.
func (f *BookingFlow) SelectSlot(scheduleID string, now time.Time) error {
	if f.step != StepChoosingSlot {
		return ErrWrongStep
	}

	if f.dayKey == "" {
		return ErrNoSelection
	}

	bucket, _ := f.bucket(f.dayKey)
	for i := range bucket.Schedules {
		s := bucket.Schedules[i]
		if s.ID != scheduleID {
			continue
		}
		if SlotState(s, now) != SlotOpen {
			return ErrSlotUnavailable
		}
		f.slot = &s
		return nil
	}

	return ErrUnknownSlot
}

// Advance moves to the detail-entry step. The selected slot is re-checked
// against now so a slot that started while the user hesitated is refused.
func (f *BookingFlow) Advance(now time.Time) error {
	if f.step != StepChoosingSlot {
		return ErrWrongStep
	}

	if f.dayKey == "" || f.slot == nil {
		return ErrNoSelection
	}

	if SlotState(*f.slot, now) != SlotOpen {
		return ErrSlotUnavailable
	}

	f.step = StepEnteringDetails

	return nil
}

// Back returns to slot choice, preserving the selection.
func (f *BookingFlow) Back() error {
	if f.step != StepEnteringDetails {
		return ErrWrongStep
	}

	f.step = StepChoosingSlot

	return nil
}

// Reset discards the flow on cancellation, navigation away, or success.
func (f *BookingFlow) Reset() {
	f.step = StepChoosingSlot
	f.dayKey = ""
	f.slot = nil
}

func (f *BookingFlow) bucket(dayKey string) (DayBucket, bool) {
	for _, b := range f.buckets {
		if b.Key == dayKey {
			return b, true
		}
	}
	return DayBucket{}, false
}
