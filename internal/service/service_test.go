package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"clinic-service/api"
	"clinic-service/internal/models"
	"clinic-service/pkg/response"
)

type fakeStore struct {
	schedules   map[string]*models.Schedule
	bookings    map[string]int
	bookingRows map[string]*models.Booking
	nextID      int
	deleted     []string
	txStarted   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		schedules:   map[string]*models.Schedule{},
		bookings:    map[string]int{},
		bookingRows: map[string]*models.Booking{},
	}
}

func bookingKey(patientID, scheduleID string) string {
	return patientID + "/" + scheduleID
}

func (f *fakeStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	f.txStarted++
	return nil, errors.New("tx not supported in fake")
}

func (f *fakeStore) CreateSchedule(ctx context.Context, s *models.Schedule) (string, error) {
	f.nextID++
	id := fmt.Sprintf("sched-%d", f.nextID)
	copied := *s
	copied.ID = id
	f.schedules[id] = &copied
	return id, nil
}

func (f *fakeStore) CreateScheduleTx(ctx context.Context, tx *sql.Tx, s *models.Schedule) (string, error) {
	return f.CreateSchedule(ctx, s)
}

func (f *fakeStore) GetSchedule(ctx context.Context, id string) (*models.Schedule, error) {
	s, ok := f.schedules[id]
	if !ok {
		return nil, response.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeStore) GetScheduleForBooking(ctx context.Context, tx *sql.Tx, id string) (*models.Schedule, error) {
	return f.GetSchedule(ctx, id)
}

func (f *fakeStore) ListSchedules(ctx context.Context, doctorID *string, from, to *time.Time) ([]*models.Schedule, error) {
	var result []*models.Schedule
	for _, s := range f.schedules {
		if doctorID != nil && s.DoctorID != *doctorID {
			continue
		}
		if from != nil && s.Start.Before(*from) {
			continue
		}
		if to != nil && !s.Start.Before(*to) {
			continue
		}
		copied := *s
		result = append(result, &copied)
	}
	return result, nil
}

func (f *fakeStore) UpdateSchedule(ctx context.Context, s *models.Schedule) error {
	if _, ok := f.schedules[s.ID]; !ok {
		return response.ErrNotFound
	}
	copied := *s
	f.schedules[s.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteSchedule(ctx context.Context, id string) error {
	if _, ok := f.schedules[id]; !ok {
		return response.ErrNotFound
	}
	delete(f.schedules, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeStore) CountBookings(ctx context.Context, scheduleID string) (int, error) {
	return f.bookings[scheduleID], nil
}

func (f *fakeStore) IncrementSumBooking(ctx context.Context, tx *sql.Tx, scheduleID string) error {
	return errors.New("tx not supported in fake")
}

func (f *fakeStore) DecrementSumBooking(ctx context.Context, tx *sql.Tx, scheduleID string) error {
	return errors.New("tx not supported in fake")
}

func (f *fakeStore) CreatePatient(ctx context.Context, tx *sql.Tx, p *models.Patient) (string, error) {
	return "", errors.New("tx not supported in fake")
}

func (f *fakeStore) CreateBooking(ctx context.Context, tx *sql.Tx, b *models.Booking) error {
	return errors.New("tx not supported in fake")
}

func (f *fakeStore) GetBooking(ctx context.Context, patientID, scheduleID string) (*models.Booking, error) {
	b, ok := f.bookingRows[bookingKey(patientID, scheduleID)]
	if !ok {
		return nil, response.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (f *fakeStore) UpdateBookingStatus(ctx context.Context, tx *sql.Tx, patientID, scheduleID string, status models.BookingStatus) error {
	return errors.New("tx not supported in fake")
}

func (f *fakeStore) DeleteBooking(ctx context.Context, tx *sql.Tx, patientID, scheduleID string) error {
	return errors.New("tx not supported in fake")
}

func (f *fakeStore) ListAcceptedPatients(ctx context.Context, scheduleID string) ([]*models.ScheduledPatient, error) {
	return nil, nil
}

type fakeLocker struct {
	acquired bool
	calls    int
	unlocks  int
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	f.calls++
	return f.acquired, nil
}

func (f *fakeLocker) Unlock(ctx context.Context, key string) error {
	f.unlocks++
	return nil
}

func newTestService(store *fakeStore, locker *fakeLocker, now time.Time) *Service {
	s := NewService(store, locker, 10)
	s.now = func() time.Time { return now }
	return s
}

var testNow = time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)

func validScheduleRequest() *api.ScheduleRequest {
	return &api.ScheduleRequest{
		StartTime:  testNow.Add(24 * time.Hour).Format(time.RFC3339),
		EndTime:    testNow.Add(25 * time.Hour).Format(time.RFC3339),
		Price:      150000,
		MaxBooking: 3,
	}
}

func TestCreateSchedule(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	resp, err := svc.CreateSchedule(context.Background(), "doc-1", validScheduleRequest())
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}

	if resp.DoctorID != "doc-1" {
		t.Errorf("DoctorID = %q, want doc-1", resp.DoctorID)
	}
	if resp.Status != "Open" {
		t.Errorf("Status = %q, want Open", resp.Status)
	}
	if resp.Remaining != 3 {
		t.Errorf("Remaining = %d, want 3", resp.Remaining)
	}
	if len(store.schedules) != 1 {
		t.Errorf("stored %d schedules, want 1", len(store.schedules))
	}
}

func TestCreateScheduleRoundsToHour(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	req := &api.ScheduleRequest{
		StartTime:  time.Date(2024, 3, 16, 9, 37, 12, 0, time.UTC).Format(time.RFC3339),
		EndTime:    time.Date(2024, 3, 16, 10, 50, 0, 0, time.UTC).Format(time.RFC3339),
		Price:      100,
		MaxBooking: 1,
	}

	resp, err := svc.CreateSchedule(context.Background(), "doc-1", req)
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}

	wantStart := time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC).Format(time.RFC3339)
	if resp.StartTime != wantStart {
		t.Errorf("StartTime = %q, want %q", resp.StartTime, wantStart)
	}
	wantEnd := time.Date(2024, 3, 16, 10, 0, 0, 0, time.UTC).Format(time.RFC3339)
	if resp.EndTime != wantEnd {
		t.Errorf("EndTime = %q, want %q", resp.EndTime, wantEnd)
	}
}

func TestCreateScheduleValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	req := validScheduleRequest()
	req.StartTime = testNow.Add(-24 * time.Hour).Format(time.RFC3339)
	req.EndTime = testNow.Add(-23 * time.Hour).Format(time.RFC3339)

	_, err := svc.CreateSchedule(context.Background(), "doc-1", req)

	var vErr *response.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("CreateSchedule() error = %v, want ValidationError", err)
	}
	if _, ok := vErr.Fields["start"]; !ok {
		t.Errorf("Fields = %v, want a start error", vErr.Fields)
	}
	if len(store.schedules) != 0 {
		t.Errorf("stored %d schedules on validation failure, want 0", len(store.schedules))
	}
}

func TestCreateScheduleBadTimeFormat(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeLocker{acquired: true}, testNow)

	req := validScheduleRequest()
	req.StartTime = "tomorrow at nine"

	_, err := svc.CreateSchedule(context.Background(), "doc-1", req)
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("CreateSchedule() error = %v, want ErrBadRequest", err)
	}
}

func TestUpdateScheduleOwnership(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	created, err := svc.CreateSchedule(context.Background(), "doc-1", validScheduleRequest())
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}

	_, err = svc.UpdateSchedule(context.Background(), "doc-2", created.ID, validScheduleRequest())
	if !errors.Is(err, response.ErrUnauthorized) {
		t.Errorf("UpdateSchedule() error = %v, want ErrUnauthorized", err)
	}
}

func TestUpdateScheduleWithBookings(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	created, err := svc.CreateSchedule(context.Background(), "doc-1", validScheduleRequest())
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	store.bookings[created.ID] = 2

	_, err = svc.UpdateSchedule(context.Background(), "doc-1", created.ID, validScheduleRequest())
	if !errors.Is(err, response.ErrHasBookings) {
		t.Errorf("UpdateSchedule() error = %v, want ErrHasBookings", err)
	}
}

func TestUpdateSchedule(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	created, err := svc.CreateSchedule(context.Background(), "doc-1", validScheduleRequest())
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}

	req := validScheduleRequest()
	req.Price = 200000
	req.MaxBooking = 5

	updated, err := svc.UpdateSchedule(context.Background(), "doc-1", created.ID, req)
	if err != nil {
		t.Fatalf("UpdateSchedule() error = %v", err)
	}
	if updated.Price != 200000 || updated.MaxBooking != 5 {
		t.Errorf("updated price/maxBooking = %d/%d, want 200000/5", updated.Price, updated.MaxBooking)
	}
}

func TestDeleteSchedule(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	created, err := svc.CreateSchedule(context.Background(), "doc-1", validScheduleRequest())
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}

	if err := svc.DeleteSchedule(context.Background(), "doc-1", created.ID); err != nil {
		t.Fatalf("DeleteSchedule() error = %v", err)
	}
	if len(store.deleted) != 1 {
		t.Errorf("deleted %d schedules, want 1", len(store.deleted))
	}

	err = svc.DeleteSchedule(context.Background(), "doc-1", created.ID)
	if !errors.Is(err, response.ErrNotFound) {
		t.Errorf("second DeleteSchedule() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteScheduleWithBookings(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	created, err := svc.CreateSchedule(context.Background(), "doc-1", validScheduleRequest())
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}
	store.bookings[created.ID] = 1

	err = svc.DeleteSchedule(context.Background(), "doc-1", created.ID)
	if !errors.Is(err, response.ErrHasBookings) {
		t.Errorf("DeleteSchedule() error = %v, want ErrHasBookings", err)
	}
	if len(store.deleted) != 0 {
		t.Error("schedule was deleted despite existing bookings")
	}
}

func TestGetDoctorDays(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	// Today: one open slot. Day 2: a full slot. Day 12: outside the window.
	store.schedules["s1"] = &models.Schedule{
		ID: "s1", DoctorID: "doc-1",
		Start: testNow.Add(2 * time.Hour), End: testNow.Add(3 * time.Hour),
		Price: 100, MaxBooking: 2, SumBooking: 0,
	}
	store.schedules["s2"] = &models.Schedule{
		ID: "s2", DoctorID: "doc-1",
		Start: testNow.Add(50 * time.Hour), End: testNow.Add(51 * time.Hour),
		Price: 100, MaxBooking: 2, SumBooking: 2,
	}
	store.schedules["s3"] = &models.Schedule{
		ID: "s3", DoctorID: "doc-1",
		Start: testNow.Add(12 * 24 * time.Hour), End: testNow.Add(12*24*time.Hour + time.Hour),
		Price: 100, MaxBooking: 2, SumBooking: 0,
	}
	store.schedules["s4"] = &models.Schedule{
		ID: "s4", DoctorID: "doc-other",
		Start: testNow.Add(2 * time.Hour), End: testNow.Add(3 * time.Hour),
		Price: 100, MaxBooking: 2, SumBooking: 0,
	}

	days, err := svc.GetDoctorDays(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetDoctorDays() error = %v", err)
	}

	if len(days) != 10 {
		t.Fatalf("len(days) = %d, want 10", len(days))
	}

	if days[0].Date != "2024-03-15" {
		t.Errorf("days[0].Date = %q, want 2024-03-15", days[0].Date)
	}
	if days[0].Status != "HasAvailability" {
		t.Errorf("days[0].Status = %q, want HasAvailability", days[0].Status)
	}
	if len(days[0].Schedules) != 1 || days[0].Schedules[0].ID != "s1" {
		t.Errorf("days[0].Schedules = %v, want only s1", days[0].Schedules)
	}

	if days[2].Status != "FullyBooked" {
		t.Errorf("days[2].Status = %q, want FullyBooked", days[2].Status)
	}

	if days[1].Status != "NoSlots" {
		t.Errorf("days[1].Status = %q, want NoSlots", days[1].Status)
	}
	if days[9].Status != "NoSlots" {
		t.Errorf("days[9].Status = %q, want NoSlots", days[9].Status)
	}
}

func TestCreateBookingInvalidForm(t *testing.T) {
	locker := &fakeLocker{acquired: true}
	svc := newTestService(newFakeStore(), locker, testNow)

	_, err := svc.CreateBooking(context.Background(), &api.BookingRequest{
		ScheduleID:  "s1",
		Name:        "X",
		Phone:       "123",
		Gender:      "Male",
		Address:     "ab",
		Description: "too short",
	})

	var vErr *response.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("CreateBooking() error = %v, want ValidationError", err)
	}
	for _, field := range []string{"name", "phone", "address", "description"} {
		if _, ok := vErr.Fields[field]; !ok {
			t.Errorf("Fields = %v, want an error for %q", vErr.Fields, field)
		}
	}
	if locker.calls != 0 {
		t.Errorf("locker called %d times before validation passed, want 0", locker.calls)
	}
}

func TestCreateBookingLocked(t *testing.T) {
	locker := &fakeLocker{acquired: false}
	svc := newTestService(newFakeStore(), locker, testNow)

	_, err := svc.CreateBooking(context.Background(), &api.BookingRequest{
		ScheduleID:  "s1",
		Name:        "Nguyễn Văn An",
		Phone:       "0912345678",
		Gender:      "Male",
		Address:     "12 Lê Lợi, Đà Nẵng",
		Description: "Đau đầu kéo dài hai tuần",
	})

	if !errors.Is(err, response.ErrLocked) {
		t.Errorf("CreateBooking() error = %v, want ErrLocked", err)
	}
	if locker.unlocks != 0 {
		t.Errorf("unlocked %d times without holding the lock, want 0", locker.unlocks)
	}
}

func TestImportSchedulesValidation(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	rows := []api.ScheduleRequest{
		*validScheduleRequest(),
		{
			StartTime:  testNow.Add(26 * time.Hour).Format(time.RFC3339),
			EndTime:    testNow.Add(25 * time.Hour).Format(time.RFC3339),
			Price:      100,
			MaxBooking: 1,
		},
		{
			StartTime:  "not a time",
			EndTime:    testNow.Add(30 * time.Hour).Format(time.RFC3339),
			Price:      100,
			MaxBooking: 1,
		},
	}

	_, err := svc.ImportSchedules(context.Background(), "doc-1", rows)

	var vErr *response.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("ImportSchedules() error = %v, want ValidationError", err)
	}
	if _, ok := vErr.Fields["rows[1].end"]; !ok {
		t.Errorf("Fields = %v, want an error for rows[1].end", vErr.Fields)
	}
	if _, ok := vErr.Fields["rows[2]"]; !ok {
		t.Errorf("Fields = %v, want an error for rows[2]", vErr.Fields)
	}
	if store.txStarted != 0 {
		t.Errorf("started %d transactions on validation failure, want 0", store.txStarted)
	}
	if len(store.schedules) != 0 {
		t.Errorf("stored %d schedules on validation failure, want 0", len(store.schedules))
	}
}

func TestChangeBookingStatusInvalid(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeLocker{acquired: true}, testNow)

	_, err := svc.ChangeBookingStatus(context.Background(), &api.ChangeStatusRequest{
		PatientID:  "p1",
		ScheduleID: "s1",
		Status:     "Cancelled",
	})
	if !errors.Is(err, response.ErrBadRequest) {
		t.Errorf("ChangeBookingStatus() error = %v, want ErrBadRequest", err)
	}
}

func TestChangeBookingStatusRepeatedReject(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	store.bookingRows[bookingKey("p1", "s1")] = &models.Booking{
		PatientID:  "p1",
		ScheduleID: "s1",
		Status:     models.BookingReject,
	}

	// A retried reject must not free a second seat.
	_, err := svc.ChangeBookingStatus(context.Background(), &api.ChangeStatusRequest{
		PatientID:  "p1",
		ScheduleID: "s1",
		Status:     "Reject",
	})
	if !errors.Is(err, response.ErrConflict) {
		t.Errorf("ChangeBookingStatus() error = %v, want ErrConflict", err)
	}
	if store.txStarted != 0 {
		t.Errorf("started %d transactions for a refused transition, want 0", store.txStarted)
	}
}

func TestChangeBookingStatusFromDone(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	store.bookingRows[bookingKey("p1", "s1")] = &models.Booking{
		PatientID:  "p1",
		ScheduleID: "s1",
		Status:     models.BookingDone,
	}

	_, err := svc.ChangeBookingStatus(context.Background(), &api.ChangeStatusRequest{
		PatientID:  "p1",
		ScheduleID: "s1",
		Status:     "Accept",
	})
	if !errors.Is(err, response.ErrConflict) {
		t.Errorf("ChangeBookingStatus() error = %v, want ErrConflict", err)
	}
	if store.txStarted != 0 {
		t.Errorf("started %d transactions for a refused transition, want 0", store.txStarted)
	}
}

func TestDeleteBookingUnknown(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	err := svc.DeleteBooking(context.Background(), "p1", "s1")
	if !errors.Is(err, response.ErrNotFound) {
		t.Errorf("DeleteBooking() error = %v, want ErrNotFound", err)
	}
	if store.txStarted != 0 {
		t.Errorf("started %d transactions for an unknown booking, want 0", store.txStarted)
	}
}

func TestChangeBookingStatusUnknownBooking(t *testing.T) {
	svc := newTestService(newFakeStore(), &fakeLocker{acquired: true}, testNow)

	_, err := svc.ChangeBookingStatus(context.Background(), &api.ChangeStatusRequest{
		PatientID:  "p1",
		ScheduleID: "s1",
		Status:     "Accept",
	})
	if !errors.Is(err, response.ErrNotFound) {
		t.Errorf("ChangeBookingStatus() error = %v, want ErrNotFound", err)
	}
}

func TestListSchedulePatientsOwnership(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeLocker{acquired: true}, testNow)

	created, err := svc.CreateSchedule(context.Background(), "doc-1", validScheduleRequest())
	if err != nil {
		t.Fatalf("CreateSchedule() error = %v", err)
	}

	_, err = svc.ListSchedulePatients(context.Background(), "doc-2", created.ID)
	if !errors.Is(err, response.ErrUnauthorized) {
		t.Errorf("ListSchedulePatients() error = %v, want ErrUnauthorized", err)
	}

	patients, err := svc.ListSchedulePatients(context.Background(), "doc-1", created.ID)
	if err != nil {
		t.Fatalf("ListSchedulePatients() error = %v", err)
	}
	if len(patients) != 0 {
		t.Errorf("len(patients) = %d, want 0", len(patients))
	}
}
