package response

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST     ErrCode = "REQUEST_FAILED"
	BAD_REQUEST        ErrCode = "FAILED_TO_DECODE"
	NOT_FOUND          ErrCode = "NOT_FOUND"
	LOCKED             ErrCode = "LOCKED"
	CONFLICT           ErrCode = "CONFLICT"
	SLOT_NOT_AVAILABLE ErrCode = "SLOT_NOT_AVAILABLE"
	SLOT_FULL          ErrCode = "SLOT_FULL"
	HAS_BOOKINGS       ErrCode = "HAS_BOOKINGS"
	VALIDATION_FAILED  ErrCode = "VALIDATION_FAILED"
	UNAUTHORIZED       ErrCode = "UNAUTHORIZED"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrNotFound         = errors.New("resource not found")
	ErrLocked           = errors.New("resource is locked")
	ErrConflict         = errors.New("conflict")
	ErrSlotNotAvailable = errors.New("slot is not available")
	ErrSlotFull         = errors.New("slot is fully booked")
	ErrHasBookings      = errors.New("slot has bookings")
	ErrUnauthorized     = errors.New("unauthorized")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

// ValidationError carries per-field messages from the validators through the
// service layer up to the handler, which renders them as the fields map.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func Validation(fields map[string]string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    string(VALIDATION_FAILED),
			Message: "validation failed",
			Fields:  fields,
		},
	}
}
