package session

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

// JWTStore is a sessions.Store whose cookie carries an HS256-signed token.
// The token subject is the user id and its expiry follows the cookie MaxAge.
// Each saved token gets a fresh jti, which doubles as the session id.
type JWTStore struct {
	secret  []byte
	now     func() time.Time
	Options *sessions.Options
}

func NewJWTStore(secret string, opts sessions.Options) *JWTStore {
	return &JWTStore{secret: []byte(secret), now: time.Now, Options: &opts}
}

func (s *JWTStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New decodes the token from the cookie. Tokens that are malformed, expired
// or signed with another key produce an empty session.
func (s *JWTStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return session, nil
	}

	claims, err := s.parse(c.Value)
	if err != nil {
		return session, nil
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return session, nil
	}

	session.ID = claims.ID
	session.IsNew = false
	session.Values[UserIDKey] = userID
	return session, nil
}

// Save signs a new token. A negative MaxAge or a session without a user
// expires the cookie instead.
func (s *JWTStore) Save(_ *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	userID, ok := session.Values[UserIDKey].(int64)
	if session.Options.MaxAge < 0 || !ok {
		opts := *session.Options
		opts.MaxAge = -1
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", &opts))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	token, err := s.sign(userID, session.ID, time.Duration(session.Options.MaxAge)*time.Second)
	if err != nil {
		return err
	}

	http.SetCookie(w, sessions.NewCookie(session.Name(), token, session.Options))
	return nil
}

func (s *JWTStore) sign(userID int64, id string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("session sign: %w", err)
	}
	return signed, nil
}

func (s *JWTStore) parse(raw string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
