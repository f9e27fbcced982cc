package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clinic-service/api"
	"clinic-service/internal/lock"
	"clinic-service/internal/models"
	"clinic-service/internal/schedule"
	"clinic-service/pkg/response"
)

type Service struct {
	store      Store
	locker     lock.Locker
	windowDays int
	now        func() time.Time
}

func NewService(store Store, locker lock.Locker, windowDays int) *Service {
	if windowDays <= 0 {
		windowDays = schedule.DefaultWindowDays
	}

	return &Service{
		store:      store,
		locker:     locker,
		windowDays: windowDays,
		now:        time.Now,
	}
}

type Store interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// Schedules
	CreateSchedule(ctx context.Context, schedule *models.Schedule) (string, error)
	CreateScheduleTx(ctx context.Context, tx *sql.Tx, schedule *models.Schedule) (string, error)
	GetSchedule(ctx context.Context, id string) (*models.Schedule, error)
	GetScheduleForBooking(ctx context.Context, tx *sql.Tx, id string) (*models.Schedule, error)
	ListSchedules(ctx context.Context, doctorID *string, from, to *time.Time) ([]*models.Schedule, error)
	UpdateSchedule(ctx context.Context, schedule *models.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error
	CountBookings(ctx context.Context, scheduleID string) (int, error)
	IncrementSumBooking(ctx context.Context, tx *sql.Tx, scheduleID string) error
	DecrementSumBooking(ctx context.Context, tx *sql.Tx, scheduleID string) error

	// Patients / bookings
	CreatePatient(ctx context.Context, tx *sql.Tx, patient *models.Patient) (string, error)
	CreateBooking(ctx context.Context, tx *sql.Tx, booking *models.Booking) error
	GetBooking(ctx context.Context, patientID, scheduleID string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, tx *sql.Tx, patientID, scheduleID string, status models.BookingStatus) error
	DeleteBooking(ctx context.Context, tx *sql.Tx, patientID, scheduleID string) error
	ListAcceptedPatients(ctx context.Context, scheduleID string) ([]*models.ScheduledPatient, error)
}

func (s *Service) scheduleResponse(m *models.Schedule, now time.Time) *api.ScheduleResponse {
	return &api.ScheduleResponse{
		ID:         m.ID,
		DoctorID:   m.DoctorID,
		StartTime:  m.Start.UTC().Format(time.RFC3339),
		EndTime:    m.End.UTC().Format(time.RFC3339),
		Price:      m.Price,
		MaxBooking: m.MaxBooking,
		SumBooking: m.SumBooking,
		Status:     string(schedule.SlotState(*m, now)),
		Remaining:  schedule.Remaining(*m),
		TimeRange:  schedule.FormatTimeRange(*m),
	}
}

func parseDraft(req *api.ScheduleRequest, mode schedule.DialogMode, scheduleID string) (schedule.Draft, error) {
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return schedule.Draft{}, fmt.Errorf("invalid startTime: %w", response.ErrBadRequest)
	}

	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		return schedule.Draft{}, fmt.Errorf("invalid endTime: %w", response.ErrBadRequest)
	}

	return schedule.Draft{
		Mode:       mode,
		ScheduleID: scheduleID,
		Start:      start,
		End:        end,
		Price:      req.Price,
		MaxBooking: req.MaxBooking,
	}, nil
}

// #### schedules ####

func (s *Service) CreateSchedule(ctx context.Context, doctorID string, req *api.ScheduleRequest) (*api.ScheduleResponse, error) {
	const op = "service.CreateSchedule"

	draft, err := parseDraft(req, schedule.ModeAdd, "")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()

	sanitized, fieldErrs := schedule.ValidateDraft(draft, now)
	if fieldErrs != nil {
		return nil, fmt.Errorf("%s: %w", op, &response.ValidationError{Fields: fieldErrs})
	}

	id, err := s.store.CreateSchedule(ctx, &models.Schedule{
		DoctorID:   doctorID,
		Start:      sanitized.Start,
		End:        sanitized.End,
		Price:      sanitized.Price,
		MaxBooking: sanitized.MaxBooking,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetSchedule(ctx, id)
}

func (s *Service) GetSchedule(ctx context.Context, id string) (*api.ScheduleResponse, error) {
	const op = "service.GetSchedule"

	m, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.scheduleResponse(m, s.now()), nil
}

func (s *Service) ListSchedules(ctx context.Context, doctorID *string, from, to *time.Time) ([]*api.ScheduleResponse, error) {
	const op = "service.ListSchedules"

	schedules, err := s.store.ListSchedules(ctx, doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()

	result := make([]*api.ScheduleResponse, 0, len(schedules))
	for _, m := range schedules {
		result = append(result, s.scheduleResponse(m, now))
	}

	return result, nil
}

// GetDoctorDays returns the patient-facing booking window: one entry per
// calendar day starting today, days without slots included so the UI can show
// a "no slots" placeholder.
func (s *Service) GetDoctorDays(ctx context.Context, doctorID string) ([]*api.DayResponse, error) {
	const op = "service.GetDoctorDays"

	now := s.now()
	from := schedule.StartOfDay(now)
	to := from.AddDate(0, 0, s.windowDays)

	schedules, err := s.store.ListSchedules(ctx, &doctorID, &from, &to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	flat := make([]models.Schedule, 0, len(schedules))
	for _, m := range schedules {
		flat = append(flat, *m)
	}

	buckets := schedule.GroupByDay(flat, now, s.windowDays)

	result := make([]*api.DayResponse, 0, len(buckets))
	for _, b := range buckets {
		day := &api.DayResponse{
			Date:      b.Key,
			Status:    string(schedule.DayState(b)),
			Schedules: make([]api.ScheduleResponse, 0, len(b.Schedules)),
		}
		for i := range b.Schedules {
			day.Schedules = append(day.Schedules, *s.scheduleResponse(&b.Schedules[i], now))
		}
		result = append(result, day)
	}

	return result, nil
}

func (s *Service) UpdateSchedule(ctx context.Context, doctorID, id string, req *api.ScheduleRequest) (*api.ScheduleResponse, error) {
	const op = "service.UpdateSchedule"

	existing, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if existing.DoctorID != doctorID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	count, err := s.store.CountBookings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%s: %w", op, response.ErrHasBookings)
	}

	draft, err := parseDraft(req, schedule.ModeEdit, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sanitized, fieldErrs := schedule.ValidateDraft(draft, s.now())
	if fieldErrs != nil {
		return nil, fmt.Errorf("%s: %w", op, &response.ValidationError{Fields: fieldErrs})
	}

	existing.Start = sanitized.Start
	existing.End = sanitized.End
	existing.Price = sanitized.Price
	existing.MaxBooking = sanitized.MaxBooking

	if err := s.store.UpdateSchedule(ctx, existing); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetSchedule(ctx, id)
}

func (s *Service) DeleteSchedule(ctx context.Context, doctorID, id string) error {
	const op = "service.DeleteSchedule"

	existing, err := s.store.GetSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if existing.DoctorID != doctorID {
		return fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	count, err := s.store.CountBookings(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		return fmt.Errorf("%s: %w", op, response.ErrHasBookings)
	}

	if err := s.store.DeleteSchedule(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ImportSchedules creates a batch of slots in one transaction. Every row is
// validated up front; one bad row fails the whole batch so a partially
// applied import never happens.
func (s *Service) ImportSchedules(ctx context.Context, doctorID string, rows []api.ScheduleRequest) (int, error) {
	const op = "service.ImportSchedules"

	now := s.now()

	fieldErrs := schedule.FieldErrors{}
	sanitized := make([]schedule.Draft, 0, len(rows))

	for i := range rows {
		draft, err := parseDraft(&rows[i], schedule.ModeAdd, "")
		if err != nil {
			fieldErrs[fmt.Sprintf("rows[%d]", i)] = "invalid time format"
			continue
		}

		clean, errs := schedule.ValidateDraft(draft, now)
		if errs != nil {
			for field, msg := range errs {
				fieldErrs[fmt.Sprintf("rows[%d].%s", i, field)] = msg
			}
			continue
		}

		sanitized = append(sanitized, clean)
	}

	if len(fieldErrs) > 0 {
		return 0, fmt.Errorf("%s: %w", op, &response.ValidationError{Fields: fieldErrs})
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	for _, draft := range sanitized {
		_, err := s.store.CreateScheduleTx(ctx, tx, &models.Schedule{
			DoctorID:   doctorID,
			Start:      draft.Start,
			End:        draft.End,
			Price:      draft.Price,
			MaxBooking: draft.MaxBooking,
		})
		if err != nil {
			return 0, fmt.Errorf("%s: create schedule: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", op, err)
	}

	return len(sanitized), nil
}

// #### bookings ####

func (s *Service) CreateBooking(ctx context.Context, req *api.BookingRequest) (*api.BookingResponse, error) {
	const op = "service.CreateBooking"

	form := schedule.PatientForm{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Gender:      models.Gender(req.Gender),
		Address:     req.Address,
		Description: req.Description,
	}

	if fieldErrs := schedule.ValidatePatientForm(form); fieldErrs != nil {
		return nil, fmt.Errorf("%s: %w", op, &response.ValidationError{Fields: fieldErrs})
	}

	lockKey := lock.ScheduleKey(req.ScheduleID)

	locked, err := s.locker.Lock(ctx, lockKey, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%s: lock error: %w", op, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", op, response.ErrLocked)
	}
	defer func() {
		_ = s.locker.Unlock(ctx, lockKey)
	}()

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	slot, err := s.store.GetScheduleForBooking(ctx, tx, req.ScheduleID)
	if err != nil {
		_ = tx.Rollback()
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// The slot may have started or filled up between page load and submit.
	switch schedule.SlotState(*slot, s.now()) {
	case schedule.SlotPast:
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotNotAvailable)
	case schedule.SlotFull:
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, response.ErrSlotFull)
	}

	patientID, err := s.store.CreatePatient(ctx, tx, &models.Patient{
		Name:        req.Name,
		Phone:       req.Phone,
		Email:       req.Email,
		Gender:      models.Gender(req.Gender),
		Address:     req.Address,
		Description: req.Description,
	})
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: create patient: %w", op, err)
	}

	booking := &models.Booking{
		PatientID:  patientID,
		ScheduleID: req.ScheduleID,
		Status:     models.BookingPending,
	}

	if err := s.store.CreateBooking(ctx, tx, booking); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: create booking: %w", op, err)
	}

	if err := s.store.IncrementSumBooking(ctx, tx, req.ScheduleID); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &api.BookingResponse{
		PatientID:  patientID,
		ScheduleID: req.ScheduleID,
		Status:     string(models.BookingPending),
	}, nil
}

func (s *Service) ChangeBookingStatus(ctx context.Context, req *api.ChangeStatusRequest) (*api.BookingResponse, error) {
	const op = "service.ChangeBookingStatus"

	status := models.BookingStatus(req.Status)
	if status != models.BookingAccept && status != models.BookingReject && status != models.BookingDone {
		return nil, fmt.Errorf("%s: invalid status: %w", op, response.ErrBadRequest)
	}

	booking, err := s.store.GetBooking(ctx, req.PatientID, req.ScheduleID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// The seat adjustment is derived from the current status so a retried
	// request cannot free or take the same seat twice.
	delta, err := schedule.TransitionBooking(booking.Status, status)
	if err != nil {
		return nil, fmt.Errorf("%s: %s to %s: %w", op, booking.Status, status, response.ErrConflict)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := s.store.UpdateBookingStatus(ctx, tx, req.PatientID, req.ScheduleID, status); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	switch {
	case delta < 0:
		if err := s.store.DecrementSumBooking(ctx, tx, req.ScheduleID); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	case delta > 0:
		if err := s.store.IncrementSumBooking(ctx, tx, req.ScheduleID); err != nil {
			_ = tx.Rollback()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	return &api.BookingResponse{
		PatientID:  req.PatientID,
		ScheduleID: req.ScheduleID,
		Status:     string(status),
	}, nil
}

// DeleteBooking removes a booking entirely. A deleted booking frees its seat
// unless it was already rejected, which freed the seat at rejection time.
func (s *Service) DeleteBooking(ctx context.Context, patientID, scheduleID string) error {
	const op = "service.DeleteBooking"

	booking, err := s.store.GetBooking(ctx, patientID, scheduleID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := s.store.DeleteBooking(ctx, tx, patientID, scheduleID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}

	if booking.Status != models.BookingReject {
		if err := s.store.DecrementSumBooking(ctx, tx, scheduleID); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}

	return nil
}

// ListSchedulePatients returns the accepted patients of one slot as shown on
// the doctor's patient view.
func (s *Service) ListSchedulePatients(ctx context.Context, doctorID, scheduleID string) ([]*api.ScheduledPatientResponse, error) {
	const op = "service.ListSchedulePatients"

	existing, err := s.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, response.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if existing.DoctorID != doctorID {
		return nil, fmt.Errorf("%s: %w", op, response.ErrUnauthorized)
	}

	patients, err := s.store.ListAcceptedPatients(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result := make([]*api.ScheduledPatientResponse, 0, len(patients))
	for _, p := range patients {
		result = append(result, &api.ScheduledPatientResponse{
			PatientID:   p.ID,
			Name:        p.Name,
			Phone:       p.Phone,
			Email:       p.Email,
			Gender:      string(p.Gender),
			Address:     p.Address,
			Description: p.Description,
			Status:      string(p.Status),
		})
	}

	return result, nil
}
