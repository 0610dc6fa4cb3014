package errors

import (
	"errors"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "validation failed", http.StatusBadRequest)

	if err.Code != CodeValidation {
		t.Errorf("expected code %s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "validation failed" {
		t.Errorf("expected message 'validation failed', got %s", err.Message)
	}
	if err.HTTPStatus != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, err.HTTPStatus)
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("database connection failed")
	wrapped := Wrap(originalErr, CodeInternal, "internal error", http.StatusInternalServerError)

	if wrapped.Err != originalErr {
		t.Errorf("expected wrapped error to contain original error")
	}
	if wrapped.Code != CodeInternal {
		t.Errorf("expected code %s, got %s", CodeInternal, wrapped.Code)
	}
	if !errors.Is(wrapped, originalErr) {
		t.Errorf("expected errors.Is to see through the wrapper")
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "resource not found",
			},
			expected: "NOT_FOUND: resource not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeInternal,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "INTERNAL_ERROR: internal error (caused by: database connection failed)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestConstructorStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Listing"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad input", nil), CodeValidation, http.StatusBadRequest},
		{"invalid input", InvalidInput("empty id"), CodeInvalidInput, http.StatusBadRequest},
		{"forbidden", Forbidden("not the owner"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("slot taken"), CodeConflict, http.StatusConflict},
		{"invalid transition", InvalidTransition("booking is completed"), CodeInvalidTransition, http.StatusBadRequest},
		{"policy", Policy("inside lead window"), CodePolicy, http.StatusBadRequest},
		{"internal", Internal("boom", errors.New("io")), CodeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.StatusCode())
			}
		})
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "abc123")

	if err.Details["resource"] != "Booking" {
		t.Errorf("expected resource detail 'Booking', got %v", err.Details["resource"])
	}
	if err.Details["id"] != "abc123" {
		t.Errorf("expected id detail 'abc123', got %v", err.Details["id"])
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("slot taken")
	if got := AsAppError(appErr); got != appErr {
		t.Errorf("expected the same AppError back")
	}

	plain := errors.New("unexpected")
	converted := AsAppError(plain)
	if converted.Code != CodeInternal {
		t.Errorf("expected plain errors to convert to %s, got %s", CodeInternal, converted.Code)
	}
	if converted.Err != plain {
		t.Errorf("expected the plain error to be preserved as the cause")
	}
}
