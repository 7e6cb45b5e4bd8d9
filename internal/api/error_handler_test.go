package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quillpost/blog/internal/core/domain"
	"github.com/quillpost/blog/internal/infrastructure/session"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest, "title is required"},
		{"not found", domain.ErrPostNotFound, http.StatusNotFound, "post not found"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "access forbidden"},
		{"auth required", domain.ErrAuthRequired, http.StatusUnauthorized, "authentication required"},
		{"unknown user", domain.ErrUserNotFound, http.StatusUnauthorized, "invalid username or password"},
		{"wrong password", domain.ErrInvalidPassword, http.StatusUnauthorized, "invalid username or password"},
		{"duplicate", fmt.Errorf("%w: alice", domain.ErrDuplicateUser), http.StatusConflict, "user already exists"},
		{"echo error", echo.NewHTTPError(http.StatusNotFound, "post not found"), http.StatusNotFound, "post not found"},
		{"session store down", fmt.Errorf("%w: %w", session.ErrUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable, "service unavailable"},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodPost, "/1/update", nil), rec)

			NewHTTPErrorHandler(zerolog.Nop())(tt.err, c)

			if rec.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Error != tt.msg {
				t.Fatalf("expected %q, got %q", tt.msg, resp.Error)
			}
		})
	}
}
