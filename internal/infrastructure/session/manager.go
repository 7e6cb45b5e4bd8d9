// Package session binds an authenticated user id to the client via a
// gorilla sessions.Store, accessed through the echo-contrib session middleware.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

const (
	CookieName = "blog_session"
	UserIDKey  = "user_id"
)

// ErrUnavailable marks a session lookup that failed because the backing
// store could not be reached, as opposed to a missing or tampered session.
var ErrUnavailable = errors.New("session store unavailable")

// Revoker is implemented by stores that keep server-side session state.
type Revoker interface {
	Revoke(ctx context.Context, id string) error
}

// Manager creates, reads and clears the authenticated session.
type Manager struct {
	name   string
	store  sessions.Store
	maxAge int
}

func NewManager(store sessions.Store, cfg StoreConfig) *Manager {
	return &Manager{
		name:   CookieName,
		store:  store,
		maxAge: int(cfg.TTL.Seconds()),
	}
}

// Middleware installs the store on every request so handlers can reach it.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return echosession.Middleware(m.store)
}

// Establish discards whatever the session held before, issues a new session
// id and binds userID to it.
func (m *Manager) Establish(c echo.Context, userID int64) error {
	sess, err := m.get(c)
	if err != nil {
		return err
	}

	if r, ok := m.store.(Revoker); ok && sess.ID != "" {
		if err := r.Revoke(c.Request().Context(), sess.ID); err != nil {
			return err
		}
	}

	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.ID = ""
	sess.IsNew = true
	sess.Options.MaxAge = m.maxAge
	sess.Values[UserIDKey] = userID

	if err := m.store.Save(c.Request(), c.Response(), sess); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}

// CurrentUserID returns the user id bound to the request's session.
// A missing, expired or tampered session counts as anonymous; an
// unreachable store is returned as an error.
func (m *Manager) CurrentUserID(c echo.Context) (int64, bool, error) {
	sess, err := m.get(c)
	if err != nil {
		return 0, false, err
	}
	id, ok := sess.Values[UserIDKey].(int64)
	return id, ok, nil
}

// Clear removes every value from the session and expires the cookie.
func (m *Manager) Clear(c echo.Context) error {
	sess, err := m.get(c)
	if err != nil {
		return err
	}

	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1

	if err := m.store.Save(c.Request(), c.Response(), sess); err != nil {
		return fmt.Errorf("session clear: %w", err)
	}
	return nil
}

// get tolerates decode errors from a stale or tampered cookie: gorilla still
// returns a fresh session alongside the error. ErrUnavailable is not tolerated.
func (m *Manager) get(c echo.Context) (*sessions.Session, error) {
	sess, err := echosession.Get(m.name, c)
	if errors.Is(err, ErrUnavailable) {
		return nil, err
	}
	if sess == nil {
		if err == nil {
			err = fmt.Errorf("session %q unavailable", m.name)
		}
		return nil, fmt.Errorf("session get: %w", err)
	}
	return sess, nil
}
