package schedule

import (
	"strings"
	"testing"

	"clinic-service/internal/models"
)

func validPatientForm() PatientForm {
	return PatientForm{
		Name:        "Nguyễn Văn An",
		Phone:       "0912345678",
		Email:       "patient@example.com",
		Gender:      models.GenderMale,
		Address:     "123 ABC Street",
		Description: "Persistent stomach pain since last week",
	}
}

func TestValidatePatientFormOK(t *testing.T) {
	if errs := ValidatePatientForm(validPatientForm()); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidatePatientFormEmailOptional(t *testing.T) {
	f := validPatientForm()
	f.Email = ""
	if errs := ValidatePatientForm(f); errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidatePatientFormFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PatientForm)
		field  string
	}{
		{"empty name", func(f *PatientForm) { f.Name = "" }, "name"},
		{"short name", func(f *PatientForm) { f.Name = "A" }, "name"},
		{"digits in name", func(f *PatientForm) { f.Name = "Nguyen 123" }, "name"},
		{"empty phone", func(f *PatientForm) { f.Phone = "" }, "phone"},
		{"short phone", func(f *PatientForm) { f.Phone = "0912" }, "phone"},
		{"bad prefix", func(f *PatientForm) { f.Phone = "0112345678" }, "phone"},
		{"bad email", func(f *PatientForm) { f.Email = "not-an-email" }, "email"},
		{"missing gender", func(f *PatientForm) { f.Gender = "" }, "gender"},
		{"empty address", func(f *PatientForm) { f.Address = "" }, "address"},
		{"short address", func(f *PatientForm) { f.Address = "abc" }, "address"},
		{"empty reason", func(f *PatientForm) { f.Description = "" }, "description"},
		{"short reason", func(f *PatientForm) { f.Description = "too short" }, "description"},
		{"long reason", func(f *PatientForm) { f.Description = strings.Repeat("a", 501) }, "description"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validPatientForm()
			tt.mutate(&f)

			errs := ValidatePatientForm(f)
			if errs == nil {
				t.Fatal("expected validation errors")
			}
			if errs[tt.field] == "" {
				t.Errorf("expected error on %q, got %v", tt.field, errs)
			}
		})
	}
}

func TestValidatePatientFormPhoneVariants(t *testing.T) {
	pass := []string{"0912345678", "0387654321", "8412345678", "0512345678", "0712345678"}
	fail := []string{"1912345678", "09123456789", "091234567", "0212345678"}

	for _, p := range pass {
		f := validPatientForm()
		f.Phone = p
		if errs := ValidatePatientForm(f); errs["phone"] != "" {
			t.Errorf("phone %q rejected: %q", p, errs["phone"])
		}
	}
	for _, p := range fail {
		f := validPatientForm()
		f.Phone = p
		if errs := ValidatePatientForm(f); errs["phone"] == "" {
			t.Errorf("phone %q accepted, want rejection", p)
		}
	}
}

func TestValidatePatientFormReportsAllViolations(t *testing.T) {
	errs := ValidatePatientForm(PatientForm{})
	for _, field := range []string{"name", "phone", "gender", "address", "description"} {
		if errs[field] == "" {
			t.Errorf("missing error on %q", field)
		}
	}
}
