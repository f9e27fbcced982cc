package schedule

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"clinic-service/internal/models"
)

// Patient-detail form rules. Names allow Vietnamese diacritics, phones must
// be Vietnamese mobile numbers, email is optional.
var (
	nameRe  = regexp.MustCompile(`^[a-zA-ZÀ-ỹ\s]+$`)
	phoneRe = regexp.MustCompile(`^(84|0[35789])[0-9]{8}$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)
)

const (
	minNameLen    = 2
	minAddressLen = 5
	minReasonLen  = 10
	maxReasonLen  = 500
)

// PatientForm is the detail form a patient fills in on the second booking
// step. Description is the visit reason.
type PatientForm struct {
	Name        string
	Phone       string
	Email       string
	Gender      models.Gender
	Address     string
	Description string
}

// ValidatePatientForm reports every violated rule at once; nil means valid.
func ValidatePatientForm(f PatientForm) FieldErrors {
	errs := FieldErrors{}

	name := strings.TrimSpace(f.Name)
	switch {
	case name == "":
		errs["name"] = "name is required"
	case utf8.RuneCountInString(name) < minNameLen:
		errs["name"] = "name must be at least 2 characters"
	case !nameRe.MatchString(name):
		errs["name"] = "name may only contain letters and spaces"
	}

	switch {
	case f.Phone == "":
		errs["phone"] = "phone is required"
	case !phoneRe.MatchString(f.Phone):
		errs["phone"] = "phone is not a valid Vietnamese mobile number"
	}

	if f.Email != "" && !emailRe.MatchString(f.Email) {
		errs["email"] = "email is not valid"
	}

	if f.Gender != models.GenderMale && f.Gender != models.GenderFemale {
		errs["gender"] = "gender is required"
	}

	address := strings.TrimSpace(f.Address)
	switch {
	case address == "":
		errs["address"] = "address is required"
	case utf8.RuneCountInString(address) < minAddressLen:
		errs["address"] = "address must be at least 5 characters"
	}

	reason := strings.TrimSpace(f.Description)
	switch {
	case reason == "":
		errs["description"] = "visit reason is required"
	case utf8.RuneCountInString(reason) < minReasonLen:
		errs["description"] = "visit reason must be at least 10 characters"
	case utf8.RuneCountInString(reason) > maxReasonLen:
		errs["description"] = "visit reason must not exceed 500 characters"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
