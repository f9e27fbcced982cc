package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"clinic-service/internal/models"
	"clinic-service/pkg/response"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Storage struct {
	db *sql.DB
}

func New(storagePath string) (*Storage, error) {
	const op = "storage.postgres.New"

	db, err := sql.Open("postgres", storagePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *Storage) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// #### schedules ####

func (s *Storage) CreateSchedule(ctx context.Context, schedule *models.Schedule) (string, error) {
	const op = "storage.postgres.CreateSchedule"

	id := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO schedules
		(id, doctor_id, start_time, end_time, price, max_booking, sum_booking)
		VALUES ($1, $2, $3, $4, $5, $6, 0)`,
		id,
		schedule.DoctorID,
		schedule.Start,
		schedule.End,
		schedule.Price,
		schedule.MaxBooking,
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return "", fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if ok && sqlErr.Code == "23503" {
			return "", fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) CreateScheduleTx(ctx context.Context, tx *sql.Tx, schedule *models.Schedule) (string, error) {
	const op = "storage.postgres.CreateScheduleTx"

	id := uuid.NewString()

	_, err := tx.ExecContext(ctx,
		`INSERT INTO schedules
		(id, doctor_id, start_time, end_time, price, max_booking, sum_booking)
		VALUES ($1, $2, $3, $4, $5, $6, 0)`,
		id,
		schedule.DoctorID,
		schedule.Start,
		schedule.End,
		schedule.Price,
		schedule.MaxBooking,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	const op = "storage.postgres.GetSchedule"

	var schedule models.Schedule

	err := s.db.QueryRowContext(ctx,
		`SELECT id, doctor_id, start_time, end_time, price, max_booking, sum_booking
		FROM schedules WHERE id=$1`, id).
		Scan(
			&schedule.ID,
			&schedule.DoctorID,
			&schedule.Start,
			&schedule.End,
			&schedule.Price,
			&schedule.MaxBooking,
			&schedule.SumBooking,
		)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &schedule, nil
}

// GetScheduleForBooking locks the schedule row for the duration of the
// booking transaction so concurrent bookings see a current counter.
func (s *Storage) GetScheduleForBooking(ctx context.Context, tx *sql.Tx, id string) (*models.Schedule, error) {
	const op = "storage.postgres.GetScheduleForBooking"

	var schedule models.Schedule

	err := tx.QueryRowContext(ctx,
		`SELECT id, doctor_id, start_time, end_time, price, max_booking, sum_booking
		FROM schedules WHERE id=$1
		FOR UPDATE`, id).
		Scan(
			&schedule.ID,
			&schedule.DoctorID,
			&schedule.Start,
			&schedule.End,
			&schedule.Price,
			&schedule.MaxBooking,
			&schedule.SumBooking,
		)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &schedule, nil
}

func (s *Storage) ListSchedules(ctx context.Context, doctorID *string, from, to *time.Time) ([]*models.Schedule, error) {
	const op = "storage.postgres.ListSchedules"

	query := `SELECT id, doctor_id, start_time, end_time, price, max_booking, sum_booking
		FROM schedules WHERE 1=1`
	args := []any{}

	if doctorID != nil {
		args = append(args, *doctorID)
		query += fmt.Sprintf(" AND doctor_id=$%d", len(args))
	}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(" AND start_time >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(" AND start_time < $%d", len(args))
	}

	query += " ORDER BY start_time"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var schedules []*models.Schedule

	for rows.Next() {
		var schedule models.Schedule
		err := rows.Scan(
			&schedule.ID,
			&schedule.DoctorID,
			&schedule.Start,
			&schedule.End,
			&schedule.Price,
			&schedule.MaxBooking,
			&schedule.SumBooking,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		schedules = append(schedules, &schedule)
	}

	return schedules, nil
}

func (s *Storage) UpdateSchedule(ctx context.Context, schedule *models.Schedule) error {
	const op = "storage.postgres.UpdateSchedule"

	res, err := s.db.ExecContext(ctx,
		`UPDATE schedules
		SET start_time=$1, end_time=$2, price=$3, max_booking=$4
		WHERE id=$5`,
		schedule.Start,
		schedule.End,
		schedule.Price,
		schedule.MaxBooking,
		schedule.ID,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteSchedule(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteSchedule"

	res, err := s.db.ExecContext(ctx, `DELETE FROM schedules WHERE id=$1`, id)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23503" {
			return fmt.Errorf("%s: %w", op, response.ErrHasBookings)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) CountBookings(ctx context.Context, scheduleID string) (int, error) {
	const op = "storage.postgres.CountBookings"

	var count int

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM patient_schedule WHERE schedule_id=$1`, scheduleID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}

func (s *Storage) IncrementSumBooking(ctx context.Context, tx *sql.Tx, scheduleID string) error {
	const op = "storage.postgres.IncrementSumBooking"

	_, err := tx.ExecContext(ctx,
		`UPDATE schedules SET sum_booking = sum_booking + 1 WHERE id=$1`, scheduleID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) DecrementSumBooking(ctx context.Context, tx *sql.Tx, scheduleID string) error {
	const op = "storage.postgres.DecrementSumBooking"

	_, err := tx.ExecContext(ctx,
		`UPDATE schedules SET sum_booking = sum_booking - 1
		WHERE id=$1 AND sum_booking > 0`, scheduleID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// #### patients / bookings ####

func (s *Storage) CreatePatient(ctx context.Context, tx *sql.Tx, patient *models.Patient) (string, error) {
	const op = "storage.postgres.CreatePatient"

	id := uuid.NewString()

	_, err := tx.ExecContext(ctx,
		`INSERT INTO patients
		(id, name, phone, email, gender, address, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		patient.Name,
		patient.Phone,
		patient.Email,
		string(patient.Gender),
		patient.Address,
		patient.Description,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return id, nil
}

func (s *Storage) CreateBooking(ctx context.Context, tx *sql.Tx, booking *models.Booking) error {
	const op = "storage.postgres.CreateBooking"

	_, err := tx.ExecContext(ctx,
		`INSERT INTO patient_schedule
		(patient_id, schedule_id, status)
		VALUES ($1, $2, $3)`,
		booking.PatientID,
		booking.ScheduleID,
		string(booking.Status),
	)
	if err != nil {
		sqlErr, ok := err.(*pq.Error)
		if ok && sqlErr.Code == "23505" {
			return fmt.Errorf("%s: %w", op, response.ErrConflict)
		}
		if ok && sqlErr.Code == "23503" {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) GetBooking(ctx context.Context, patientID, scheduleID string) (*models.Booking, error) {
	const op = "storage.postgres.GetBooking"

	var booking models.Booking
	var status string

	err := s.db.QueryRowContext(ctx,
		`SELECT patient_id, schedule_id, status
		FROM patient_schedule WHERE patient_id=$1 AND schedule_id=$2`,
		patientID, scheduleID).
		Scan(&booking.PatientID, &booking.ScheduleID, &status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	booking.Status = models.BookingStatus(status)

	return &booking, nil
}

func (s *Storage) UpdateBookingStatus(ctx context.Context, tx *sql.Tx, patientID, scheduleID string, status models.BookingStatus) error {
	const op = "storage.postgres.UpdateBookingStatus"

	res, err := tx.ExecContext(ctx,
		`UPDATE patient_schedule SET status=$1
		WHERE patient_id=$2 AND schedule_id=$3`,
		string(status), patientID, scheduleID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) DeleteBooking(ctx context.Context, tx *sql.Tx, patientID, scheduleID string) error {
	const op = "storage.postgres.DeleteBooking"

	res, err := tx.ExecContext(ctx,
		`DELETE FROM patient_schedule
		WHERE patient_id=$1 AND schedule_id=$2`,
		patientID, scheduleID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, response.ErrNotFound)
	}

	return nil
}

func (s *Storage) ListAcceptedPatients(ctx context.Context, scheduleID string) ([]*models.ScheduledPatient, error) {
	const op = "storage.postgres.ListAcceptedPatients"

	rows, err := s.db.QueryContext(ctx,
		`SELECT p.id, p.name, p.phone, p.email, p.gender, p.address, p.description, ps.status
		FROM patients p
		JOIN patient_schedule ps ON ps.patient_id = p.id
		WHERE ps.schedule_id=$1 AND ps.status IN ('Accept', 'Done')
		ORDER BY p.name`,
		scheduleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer rows.Close()

	var patients []*models.ScheduledPatient

	for rows.Next() {
		var p models.ScheduledPatient
		var gender, status string

		err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &gender, &p.Address, &p.Description, &status)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		p.Gender = models.Gender(gender)
		p.Status = models.BookingStatus(status)

		patients = append(patients, &p)
	}

	return patients, nil
}
