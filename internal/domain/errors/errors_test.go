package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestSentinelErrors tests that sentinel errors survive wrapping
func TestSentinelErrors(t *testing.T) {
	wrapped := fmt.Errorf("%w: %q", ErrUnsupportedDriver, "oracle")

	if !errors.Is(wrapped, ErrUnsupportedDriver) {
		t.Error("errors.Is should find ErrUnsupportedDriver")
	}
	if !strings.Contains(wrapped.Error(), "oracle") {
		t.Errorf("Error() = %q, should contain the driver", wrapped.Error())
	}
}

// TestValidationErrors tests the collection helpers
func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.HasErrors() {
		t.Fatal("empty collection should not report errors")
	}
	if errs.Error() != "validation failed" {
		t.Errorf("Error() = %q, want %q", errs.Error(), "validation failed")
	}

	errs.Add("idUsuario", "es obligatorio")
	errs.Add("pagina", "debe ser mayor que cero")

	if !errs.HasErrors() {
		t.Fatal("collection should report errors")
	}
	if !strings.Contains(errs.Error(), "2 error") {
		t.Errorf("Error() = %q, should mention 2 errors", errs.Error())
	}
	if errs[0].Field != "idUsuario" {
		t.Errorf("First error field = %q, want %q", errs[0].Field, "idUsuario")
	}
}

// TestProcedureError tests procedure failure formatting and unwrapping
func TestProcedureError(t *testing.T) {
	cause := errors.New("login failed for user 'app'")
	err := NewProcedureError("dbo.sp_Usuario_CRUD", "execute", cause)

	msg := err.Error()
	if !strings.Contains(msg, "dbo.sp_Usuario_CRUD") || !strings.HasSuffix(msg, cause.Error()) {
		t.Errorf("Error() = %q, should contain procedure and end with cause", msg)
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the driver cause")
	}
	if !IsProcedureError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("IsProcedureError should see through wrapping")
	}
}

// TestColumnError tests conversion failure formatting
func TestColumnError(t *testing.T) {
	err := NewColumnError("Total", "int", "abc", errors.New("invalid syntax"))

	msg := err.Error()
	for _, substr := range []string{"Total", "string", "int", "invalid syntax"} {
		if !strings.Contains(msg, substr) {
			t.Errorf("Error() = %q, should contain %q", msg, substr)
		}
	}
	if !IsColumnError(err) {
		t.Error("IsColumnError should be true")
	}
}

// TestIsHelpers tests the classification helpers
func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		valid     bool
		procedure bool
	}{
		{"Validation error", ValidationError{Field: "f", Message: "m"}, true, false},
		{"Validation errors", ValidationErrors{{Field: "f", Message: "m"}}, true, false},
		{"Procedure error", NewProcedureError("sp", "connect", errors.New("refused")), false, true},
		{"Other error", errors.New("other"), false, false},
		{"Nil error", nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidationError(tt.err); got != tt.valid {
				t.Errorf("IsValidationError() = %v, want %v", got, tt.valid)
			}
			if got := IsProcedureError(tt.err); got != tt.procedure {
				t.Errorf("IsProcedureError() = %v, want %v", got, tt.procedure)
			}
		})
	}
}
