package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/quillpost/blog/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password string) (int64, error)
	verifyFn   func(ctx context.Context, username, password string) (*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string) (int64, error) {
	return s.registerFn(ctx, username, password)
}

func (s *stubAuthService) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	return s.verifyFn(ctx, username, password)
}

func (s *stubAuthService) FindByID(context.Context, int64) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

type stubSessionManager struct {
	established []int64
	cleared     int
	clearErr    error
}

func (s *stubSessionManager) Establish(_ echo.Context, userID int64) error {
	s.established = append(s.established, userID)
	return nil
}

func (s *stubSessionManager) Clear(echo.Context) error {
	s.cleared++
	return s.clearErr
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func decodeFormError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (int64, error) {
			if username != "alice" || password != "pw1" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return 1, nil
		},
	}
	h := NewAuthHandler(stub, &stubSessionManager{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/auth/register", url.Values{"username": {"alice"}, "password": {"pw1"}}), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != LoginPath {
		t.Fatalf("expected redirect to %s, got %q", LoginPath, loc)
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (int64, error) {
			return 0, fmt.Errorf("%w: %s", domain.ErrDuplicateUser, username)
		},
	}
	h := NewAuthHandler(stub, &stubSessionManager{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/auth/register", url.Values{"username": {"bob"}, "password": {"secret"}}), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	resp := decodeFormError(t, rec)
	if resp["error"] != "User bob is already registered." {
		t.Fatalf("unexpected message: %v", resp["error"])
	}
	form, _ := resp["form"].(map[string]any)
	if form["username"] != "bob" {
		t.Fatalf("expected submitted username echoed, got %+v", form)
	}
	if _, leaked := form["password"]; leaked {
		t.Fatalf("password must not be echoed")
	}
}

func TestAuthHandler_Register_MissingPassword(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (int64, error) {
			t.Fatalf("should not be called")
			return 0, nil
		},
	}
	h := NewAuthHandler(stub, &stubSessionManager{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/auth/register", url.Values{"username": {"carol"}}), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeFormError(t, rec); resp["error"] != "password is required" {
		t.Fatalf("unexpected message: %v", resp["error"])
	}
}

func TestAuthHandler_Register_BlankUsernameFromService(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (int64, error) {
			return 0, fmt.Errorf("%w: username is required", domain.ErrValidation)
		},
	}
	h := NewAuthHandler(stub, &stubSessionManager{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/auth/register", url.Values{"username": {"   "}, "password": {"x"}}), rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeFormError(t, rec); resp["error"] != "username is required" {
		t.Fatalf("unexpected message: %v", resp["error"])
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, username, password string) (int64, error) {
			t.Fatalf("should not be called")
			return 0, nil
		},
	}
	h := NewAuthHandler(stub, &stubSessionManager{}, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("not-json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_ = h.Register(c)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		verifyFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			if username != "alice" || password != "pw1" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.User{ID: 7, Username: "alice"}, nil
		},
	}
	sessions := &stubSessionManager{}
	h := NewAuthHandler(stub, sessions, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"pw1"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get(echo.HeaderLocation); loc != IndexPath {
		t.Fatalf("expected redirect to %s, got %q", IndexPath, loc)
	}
	if len(sessions.established) != 1 || sessions.established[0] != 7 {
		t.Fatalf("expected session established for user 7, got %v", sessions.established)
	}
}

func TestAuthHandler_Login_FailuresLookTheSame(t *testing.T) {
	for _, cause := range []error{domain.ErrUserNotFound, domain.ErrInvalidPassword} {
		e := newEcho()
		stub := &stubAuthService{
			verifyFn: func(ctx context.Context, username, password string) (*domain.User, error) {
				return nil, cause
			},
		}
		sessions := &stubSessionManager{}
		h := NewAuthHandler(stub, sessions, zerolog.Nop())

		rec := httptest.NewRecorder()
		c := e.NewContext(formRequest(http.MethodPost, "/auth/login", url.Values{"username": {"alice"}, "password": {"bad"}}), rec)

		if err := h.Login(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%v: expected 401, got %d", cause, rec.Code)
		}
		if resp := decodeFormError(t, rec); resp["error"] != "invalid username or password" {
			t.Fatalf("%v: unexpected message: %v", cause, resp["error"])
		}
		if len(sessions.established) != 0 {
			t.Fatalf("%v: session must not be established", cause)
		}
	}
}

func TestAuthHandler_Login_StoreFailure(t *testing.T) {
	e := newEcho()
	boom := errors.New("db down")
	stub := &stubAuthService{
		verifyFn: func(ctx context.Context, username, password string) (*domain.User, error) {
			return nil, boom
		},
	}
	h := NewAuthHandler(stub, &stubSessionManager{}, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(formRequest(http.MethodPost, "/auth/login", url.Values{"username": {"alice"}, "password": {"pw"}}), rec)

	if err := h.Login(c); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	e := newEcho()
	sessions := &stubSessionManager{clearErr: errors.New("redis down")}
	h := NewAuthHandler(&stubAuthService{}, sessions, zerolog.Nop())

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/auth/logout", nil), rec)

	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if sessions.cleared != 1 {
		t.Fatalf("expected session cleared once, got %d", sessions.cleared)
	}
	if rec.Code != http.StatusSeeOther || rec.Header().Get(echo.HeaderLocation) != LoginPath {
		t.Fatalf("expected 303 to %s, got %d %q", LoginPath, rec.Code, rec.Header().Get(echo.HeaderLocation))
	}
}
