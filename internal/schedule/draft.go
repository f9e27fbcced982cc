package schedule

import "time"

type DialogMode string

const (
	ModeAdd  DialogMode = "add"
	ModeEdit DialogMode = "edit"
)

// Draft is the unsaved form state of the doctor's add/edit slot dialog.
type Draft struct {
	Mode       DialogMode
	ScheduleID string // set in edit mode only
	Start      time.Time
	End        time.Time
	Price      int
	MaxBooking int
}

// FieldErrors maps a field name to its validation message.
type FieldErrors map[string]string

// ValidateDraft checks a proposed slot and, on success, returns it with start
// and end snapped to whole-hour boundaries (clinics schedule by the hour).
// All violations are reported together. The geometry checks run on the
// truncated instants, so re-validating a sanitized draft is a no-op.
func ValidateDraft(d Draft, now time.Time) (Draft, FieldErrors) {
	errs := FieldErrors{}

	start := TruncateToHour(d.Start)
	end := TruncateToHour(d.End)

	if d.Mode == ModeAdd && start.Before(TruncateToHour(now)) {
		errs["start"] = "cannot create a slot in the past"
	}

	if !start.Before(end) {
		errs["end"] = "end must be after start"
	}

	if d.Price <= 0 {
		errs["price"] = "price must be greater than zero"
	}

	if d.MaxBooking < 1 {
		errs["maxBooking"] = "max booking must be at least 1"
	}

	if len(errs) > 0 {
		return Draft{}, errs
	}

	d.Start = start
	d.End = end

	return d, nil
}
