package api

// Wire shapes at the boundary with the UI. Instants travel as ISO-8601
// strings and are parsed in the service layer; prices are integers in the
// smallest currency unit.

type ScheduleRequest struct {
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Price      int    `json:"price"`
	MaxBooking int    `json:"maxBooking"`
}

type ScheduleResponse struct {
	ID         string `json:"id"`
	DoctorID   string `json:"doctorId"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
	Price      int    `json:"price"`
	MaxBooking int    `json:"maxBooking"`
	SumBooking int    `json:"sumBooking"`
	Status     string `json:"status"`
	Remaining  int    `json:"remaining"`
	TimeRange  string `json:"timeRange"`
}

type DayResponse struct {
	Date      string             `json:"date"`
	Status    string             `json:"status"`
	Schedules []ScheduleResponse `json:"schedules"`
}

type ScheduleImportRequest struct {
	Rows []ScheduleRequest `json:"rows"`
}

type BookingRequest struct {
	ScheduleID  string `json:"scheduleId"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

type BookingResponse struct {
	PatientID  string `json:"patientId"`
	ScheduleID string `json:"scheduleId"`
	Status     string `json:"status"`
}

type ChangeStatusRequest struct {
	PatientID  string `json:"patientId"`
	ScheduleID string `json:"scheduleId"`
	Status     string `json:"status"`
}

type ScheduledPatientResponse struct {
	PatientID   string `json:"patientId"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email,omitempty"`
	Gender      string `json:"gender"`
	Address     string `json:"address"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

type LoginRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}
