package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	withCause := NewAppError(CodeUpstream, "content service unavailable", errors.New("connection refused"))
	if got, want := withCause.Error(), "content service unavailable: connection refused"; got != want {
		t.Errorf("Error() = %q; want %q", got, want)
	}
	bare := NewAppError(CodeNotFound, "project not found", nil)
	if got := bare.Error(); got != "project not found" {
		t.Errorf("Error() = %q; want %q", got, "project not found")
	}
	if bare.Unwrap() != nil {
		t.Error("Unwrap() should be nil without a cause")
	}
}

func TestAppError_IsMatchesByCode(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("store message: %w", NewAppError(CodeInternal, "database error", cause))

	if !errors.Is(err, &AppError{Code: CodeInternal}) {
		t.Error("errors.Is should match an AppError with the same code")
	}
	if errors.Is(err, &AppError{Code: CodeNotFound}) {
		t.Error("errors.Is should not match a different code")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestCodeCheckers(t *testing.T) {
	checkers := map[int]func(error) bool{
		CodeNotFound:   IsNotFound,
		CodeValidation: IsValidation,
		CodeInternal:   IsInternal,
		CodeUpstream:   IsUpstream,
	}
	for code := range checkers {
		err := fmt.Errorf("wrapped: %w", NewAppError(code, "x", nil))
		for other, check := range checkers {
			if got := check(err); got != (other == code) {
				t.Errorf("checker for %d on code %d = %v", other, code, got)
			}
		}
	}

	plain := errors.New("some error")
	for code, check := range checkers {
		if check(plain) {
			t.Errorf("checker for %d matched a plain error", code)
		}
	}
}

func TestHTTPStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NewAppError(CodeNotFound, "project not found", nil), http.StatusNotFound},
		{"validation", NewAppError(CodeValidation, "bad phone", nil), http.StatusBadRequest},
		{"internal", NewAppError(CodeInternal, "database error", nil), http.StatusInternalServerError},
		{"upstream", NewAppError(CodeUpstream, "rejected", nil), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("join: %w", NewAppError(CodeNotFound, "x", nil)), http.StatusNotFound},
		{"unknown code", NewAppError(999, "unknown", nil), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTTPStatusCode(tt.err); got != tt.want {
				t.Errorf("HTTPStatusCode() = %d; want %d", got, tt.want)
			}
		})
	}
}
