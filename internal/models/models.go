package models

import "time"

type BookingStatus string

const (
	BookingPending BookingStatus = "Pending"
	BookingAccept  BookingStatus = "Accept"
	BookingReject  BookingStatus = "Reject"
	BookingDone    BookingStatus = "Done"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

// Schedule is one bookable time window owned by a doctor. SumBooking counts
// accepted bookings; it may transiently exceed MaxBooking between refreshes,
// which is why availability checks compare with >= rather than ==.
type Schedule struct {
	ID         string    `db:"id"`
	DoctorID   string    `db:"doctor_id"`
	Start      time.Time `db:"start_time"`
	End        time.Time `db:"end_time"`
	Price      int       `db:"price"`
	MaxBooking int       `db:"max_booking"`
	SumBooking int       `db:"sum_booking"`
}

type Patient struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Phone       string `db:"phone"`
	Email       string `db:"email"`
	Gender      Gender `db:"gender"`
	Address     string `db:"address"`
	Description string `db:"description"`
}

// Booking links a patient to a schedule.
type Booking struct {
	PatientID  string        `db:"patient_id"`
	ScheduleID string        `db:"schedule_id"`
	Status     BookingStatus `db:"status"`
}

// ScheduledPatient is a patient together with their booking status on one
// schedule, as listed on the doctor's patient view.
type ScheduledPatient struct {
	Patient
	Status BookingStatus `db:"status"`
}
