package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillpost/blog/internal/core/domain"
	"github.com/quillpost/blog/internal/core/service"
	"github.com/quillpost/blog/internal/infrastructure/db/sqldb"
	"github.com/quillpost/blog/internal/infrastructure/http/handlers"
	"github.com/quillpost/blog/internal/infrastructure/session"
)

func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()
	ctx := context.Background()

	db, err := sqldb.Open(ctx, sqldb.Config{Driver: sqldb.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, sqldb.Migrate(ctx, db))
	t.Cleanup(func() { _ = sqldb.Close(db) })

	storeCfg := session.StoreConfig{
		Backend: session.BackendCookie,
		Secret:  "router-test-secret-router-test-secret",
		TTL:     time.Hour,
	}
	store, err := session.NewStore(storeCfg, nil)
	require.NoError(t, err)

	log := zerolog.Nop()
	authService, err := service.NewAuthService(sqldb.NewUserRepository(db), bcrypt.MinCost, log)
	require.NoError(t, err)

	return NewRouter(Dependencies{
		AuthService: authService,
		PostService: service.NewPostService(sqldb.NewPostRepository(db), log),
		Sessions:    session.NewManager(store, storeCfg),
		Checks: []handlers.Check{
			{Name: "sql", Ping: func(ctx context.Context) error { return sqldb.Ping(ctx, db) }},
		},
		Logger:   log,
		Registry: prometheus.NewRegistry(),
	})
}

// browser keeps the session cookie between requests like a user agent would.
type browser struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]*http.Cookie
}

func newBrowser(t *testing.T, e *echo.Echo) *browser {
	return &browser{t: t, e: e, cookies: map[string]*http.Cookie{}}
}

func (b *browser) do(method, target string, form url.Values, headers ...string) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	for _, c := range b.cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	b.e.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
	return rec
}

func (b *browser) register(username, password string) {
	b.t.Helper()
	rec := b.do(http.MethodPost, "/auth/register", url.Values{"username": {username}, "password": {password}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

func (b *browser) login(username, password string) {
	b.t.Helper()
	rec := b.do(http.MethodPost, "/auth/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(b.t, http.StatusSeeOther, rec.Code, rec.Body.String())
	require.Equal(b.t, "/", rec.Header().Get(echo.HeaderLocation))
}

func (b *browser) posts() []domain.Post {
	b.t.Helper()
	rec := b.do(http.MethodGet, "/", nil)
	require.Equal(b.t, http.StatusOK, rec.Code)
	var resp struct {
		Posts []domain.Post `json:"posts"`
	}
	require.NoError(b.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Posts
}

func TestRouter_OwnershipScenario(t *testing.T) {
	e := newTestRouter(t)
	alice := newBrowser(t, e)
	bob := newBrowser(t, e)

	alice.register("alice", "pw1")
	bob.register("bob", "pw2")

	alice.login("alice", "pw1")
	rec := alice.do(http.MethodPost, "/create", url.Values{"title": {"Hello"}, "body": {"World"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	posts := alice.posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title)
	assert.Equal(t, "alice", posts[0].AuthorUsername)
	id := posts[0].ID

	rec = alice.do(http.MethodGet, "/auth/logout", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))

	bob.login("bob", "pw2")
	path := "/" + strconv.FormatInt(id, 10)

	rec = bob.do(http.MethodGet, path+"/update", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = bob.do(http.MethodPost, path+"/update", url.Values{"title": {"Hacked"}, "body": {""}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = bob.do(http.MethodPost, path+"/update", url.Values{"title": {""}, "body": {"x"}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, rec.Body.String(), "form")

	rec = bob.do(http.MethodPost, "/999/update", url.Values{"title": {""}, "body": {"x"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = bob.do(http.MethodPost, path+"/delete", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = bob.do(http.MethodPost, "/999/delete", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	posts = bob.posts()
	require.Len(t, posts, 1)
	assert.Equal(t, "Hello", posts[0].Title, "non-owner mutations must leave the post untouched")

	alice.login("alice", "pw1")
	rec = alice.do(http.MethodPost, path+"/update", url.Values{"title": {"Hello again"}, "body": {"edited"}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())

	rec = alice.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var shown domain.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &shown))
	assert.Equal(t, "Hello again", shown.Title)
	assert.Equal(t, "edited", shown.Body)

	rec = alice.do(http.MethodPost, path+"/delete", nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Empty(t, alice.posts())
}

func TestRouter_AnonymousGuard(t *testing.T) {
	e := newTestRouter(t)
	anon := newBrowser(t, e)

	rec := anon.do(http.MethodPost, "/create", url.Values{"title": {"x"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/login", rec.Header().Get(echo.HeaderLocation))

	rec = anon.do(http.MethodPost, "/create", url.Values{"title": {"x"}}, echo.HeaderAccept, echo.MIMEApplicationJSON)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, rec.Body.String())

	rec = anon.do(http.MethodPost, "/1/delete", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	assert.Empty(t, anon.posts())
}

func TestRouter_RegisterAndLoginFailures(t *testing.T) {
	e := newTestRouter(t)
	b := newBrowser(t, e)

	b.register("alice", "pw1")

	rec := b.do(http.MethodPost, "/auth/register", url.Values{"username": {"alice"}, "password": {"other"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "User alice is already registered.")

	wrong := b.do(http.MethodPost, "/auth/login", url.Values{"username": {"alice"}, "password": {"nope"}})
	unknown := b.do(http.MethodPost, "/auth/login", url.Values{"username": {"ghost"}, "password": {"nope"}})
	assert.Equal(t, http.StatusUnauthorized, wrong.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Contains(t, wrong.Body.String(), "invalid username or password")
	assert.Contains(t, unknown.Body.String(), "invalid username or password")
	assert.Empty(t, b.cookies, "failed logins must not establish a session")
}

func TestRouter_CreateEmptyTitlePersistsNothing(t *testing.T) {
	e := newTestRouter(t)
	b := newBrowser(t, e)
	b.register("alice", "pw1")
	b.login("alice", "pw1")

	rec := b.do(http.MethodPost, "/create", url.Values{"title": {"   "}, "body": {"text"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "title is required")
	assert.Empty(t, b.posts())
}

func TestRouter_OwnerUpdateWithEmptyTitle(t *testing.T) {
	e := newTestRouter(t)
	b := newBrowser(t, e)
	b.register("alice", "pw1")
	b.login("alice", "pw1")

	rec := b.do(http.MethodPost, "/create", url.Values{"title": {"Hello"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	id := b.posts()[0].ID

	rec = b.do(http.MethodPost, "/"+strconv.FormatInt(id, 10)+"/update", url.Values{"title": {"  "}, "body": {"x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"title is required","form":{"title":"  ","body":"x"}}`, rec.Body.String())
	assert.Equal(t, "Hello", b.posts()[0].Title)
}

func TestRouter_LongTitleAccepted(t *testing.T) {
	e := newTestRouter(t)
	b := newBrowser(t, e)
	b.register("alice", "pw1")
	b.login("alice", "pw1")

	title := strings.Repeat("t", 500)
	rec := b.do(http.MethodPost, "/create", url.Values{"title": {title}})
	require.Equal(t, http.StatusSeeOther, rec.Code, rec.Body.String())
	assert.Equal(t, title, b.posts()[0].Title)
}

func TestRouter_Health(t *testing.T) {
	e := newTestRouter(t)
	b := newBrowser(t, e)

	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/health", nil).Code)

	rec := b.do(http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sql"`)

	assert.Equal(t, http.StatusOK, b.do(http.MethodGet, "/metrics", nil).Code)
}
