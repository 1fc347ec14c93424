package utils

import (
	"errors"
	"testing"
)

func TestRequireNonEmptyReportsFirstBlankField(t *testing.T) {
	err := RequireNonEmpty(
		RequiredField{Name: "state", Value: "Karnataka"},
		RequiredField{Name: "district", Value: "  "},
		RequiredField{Name: "village", Value: ""},
	)
	if err == nil {
		t.Fatal("blank fields should fail")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if ve.Field != "district" {
		t.Fatalf("should report the first blank field in order, got %q", ve.Field)
	}

	if err := RequireNonEmpty(RequiredField{Name: "state", Value: "Karnataka"}); err != nil {
		t.Fatalf("non-blank fields should pass: %v", err)
	}
}

func TestValidationErrorTaxonomy(t *testing.T) {
	err := NewValidationError("status", "invalid rescue status")
	if !IsValidationError(err) {
		t.Fatal("NewValidationError should satisfy IsValidationError")
	}
	if IsValidationError(errors.New("boom")) {
		t.Fatal("plain errors are not validation errors")
	}
	if IsValidationError(ErrorRecordNotFound) {
		t.Fatal("sentinel errors are not validation errors")
	}
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{"asha@example.com", "officer.rao@forest.gov.in"}
	invalid := []string{"", "not-an-email", "a@b", "x@@y.com"}

	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Fatalf("%q should be valid", email)
		}
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Fatalf("%q should be invalid", email)
		}
	}
}

func TestNilIfEmpty(t *testing.T) {
	if NilIfEmpty("") != nil {
		t.Fatal("empty string should map to nil")
	}
	if got := NilIfEmpty("x"); got == nil || *got != "x" {
		t.Fatal("non-empty string should round trip")
	}
}
