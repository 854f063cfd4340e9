package domain

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestTypedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		sentinel   error
		wantStatus int
	}{
		{"not found", &NotFoundError{Message: "item gone"}, ErrNotFound, http.StatusNotFound},
		{"validation", &ValidationError{Message: "bad name"}, ErrValidation, http.StatusBadRequest},
		{"unauthorized", &UnauthorizedError{Message: "no session"}, ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", &ForbiddenError{Message: "not yours"}, ErrForbidden, http.StatusForbidden},
		{"conflict", &ConflictError{Message: "duplicate"}, ErrConflict, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.sentinel) {
				t.Errorf("errors.Is(%T, %v) = false, want true", tt.err, tt.sentinel)
			}

			// Matching survives wrapping.
			wrapped := fmt.Errorf("outer: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(wrapped %T, %v) = false, want true", tt.err, tt.sentinel)
			}

			var httpErr HTTPError
			if !errors.As(tt.err, &httpErr) {
				t.Fatalf("errors.As(%T, *HTTPError) = false", tt.err)
			}
			if httpErr.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", httpErr.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestTypedErrorsDoNotCrossMatch(t *testing.T) {
	if errors.Is(&ValidationError{Message: "bad"}, ErrNotFound) {
		t.Error("ValidationError matched ErrNotFound")
	}
	if errors.Is(&NotFoundError{Message: "gone"}, ErrValidation) {
		t.Error("NotFoundError matched ErrValidation")
	}
}
