package schedule

import (
	"time"

	"clinic-service/internal/models"
	"clinic-service/pkg/response"
)

type DialogState string

const (
	DialogClosed DialogState = "Closed"
	DialogAdd    DialogState = "Add"
	DialogEdit   DialogState = "Edit"
)

// ScheduleDialog drives the doctor's add/edit slot dialog. Submit failures
// keep the dialog open with its draft intact so the doctor can correct and
// retry without re-entering everything.
type ScheduleDialog struct {
	state DialogState
	draft Draft
}

func NewScheduleDialog() *ScheduleDialog {
	return &ScheduleDialog{state: DialogClosed}
}

func (d *ScheduleDialog) State() DialogState { return d.state }

func (d *ScheduleDialog) Draft() Draft { return d.draft }

// OpenAdd opens the dialog with a fresh draft spanning now to the next hour.
func (d *ScheduleDialog) OpenAdd(now time.Time) {
	d.state = DialogAdd
	d.draft = Draft{
		Mode:       ModeAdd,
		Start:      now,
		End:        now.Add(time.Hour),
		Price:      0,
		MaxBooking: 1,
	}
}

// OpenEdit opens the dialog on an existing schedule. A schedule that already
// has bookings of any status cannot be edited.
func (d *ScheduleDialog) OpenEdit(s models.Schedule, bookingCount int) error {
	if bookingCount > 0 {
		return response.ErrHasBookings
	}

	d.state = DialogEdit
	d.draft = Draft{
		Mode:       ModeEdit,
		ScheduleID: s.ID,
		Start:      s.Start,
		End:        s.End,
		Price:      s.Price,
		MaxBooking: s.MaxBooking,
	}

	return nil
}

// SetDraft replaces the editable fields while the dialog is open. Mode and
// target schedule are fixed at open time.
func (d *ScheduleDialog) SetDraft(start, end time.Time, price, maxBooking int) error {
	if d.state == DialogClosed {
		return ErrWrongStep
	}

	d.draft.Start = start
	d.draft.End = end
	d.draft.Price = price
	d.draft.MaxBooking = maxBooking

	return nil
}

// Submit validates the draft. On success the dialog closes and the sanitized
// draft is returned for transmission; on failure the dialog stays open and
// the field errors are returned.
func (d *ScheduleDialog) Submit(now time.Time) (Draft, FieldErrors, error) {
	if d.state == DialogClosed {
		return Draft{}, nil, ErrWrongStep
	}

	sanitized, errs := ValidateDraft(d.draft, now)
	if errs != nil {
		return Draft{}, errs, nil
	}

	d.state = DialogClosed
	d.draft = Draft{}

	return sanitized, nil, nil
}

// Cancel closes the dialog and discards the draft.
func (d *ScheduleDialog) Cancel() {
	d.state = DialogClosed
	d.draft = Draft{}
}
