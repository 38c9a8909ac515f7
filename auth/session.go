// Package auth issues and verifies session tokens and exposes the current
// user id through the request context.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/diewo77/go-rems/httpx"
)

const (
	sessionCookieName = "session"
	DefaultTTL        = 14 * 24 * time.Hour
)

var ErrInvalidSession = errors.New("invalid session")

// UserVerifier validates that a session's user still exists. Rejected agents
// are deleted, which logs them out on their next request.
type UserVerifier func(ctx context.Context, uid uint) bool

// Claims is the payload of a session token. Subject carries the user id.
type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Sessions signs HS256 session tokens and stores them in an HttpOnly cookie.
type Sessions struct {
	secret   []byte
	ttl      time.Duration
	verifier UserVerifier
	onEnd    []func(sid string)
	now      func() time.Time
}

// NewSessions returns a session manager. A zero ttl means DefaultTTL.
func NewSessions(secret string, ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if secret == "" {
		secret = "devsessionsecret"
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// SetUserVerifier configures the callback used by RequireAuth.
func (s *Sessions) SetUserVerifier(v UserVerifier) { s.verifier = v }

// OnSessionEnd registers a hook run with the session id on logout.
func (s *Sessions) OnSessionEnd(f func(sid string)) {
	if f != nil {
		s.onEnd = append(s.onEnd, f)
	}
}

// Issue returns a signed token for userID with a fresh session id.
func (s *Sessions) Issue(userID uint) (token, sid string, err error) {
	now := s.now()
	sid = uuid.NewString()
	claims := Claims{
		SessionID: sid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return token, sid, nil
}

// Verify parses a token and returns the user and session ids.
func (s *Sessions) Verify(token string) (uint, string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, "", errors.Join(ErrInvalidSession, err)
	}
	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id64 == 0 {
		return 0, "", ErrInvalidSession
	}
	return uint(id64), claims.SessionID, nil
}

// CreateSession sets the session cookie for userID and returns the session id.
func (s *Sessions) CreateSession(w http.ResponseWriter, userID uint) (string, error) {
	token, sid, err := s.Issue(userID)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  s.now().Add(s.ttl),
	})
	return sid, nil
}

// ClearSession deletes the cookie and runs the session end hooks.
func (s *Sessions) ClearSession(w http.ResponseWriter, r *http.Request) {
	if _, sid, ok := s.ParseSession(r); ok && sid != "" {
		for _, f := range s.onEnd {
			f(sid)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookieName, Value: "", Path: "/", Expires: time.Unix(0, 0), HttpOnly: true, SameSite: http.SameSiteLaxMode})
}

// ParseSession validates the cookie and returns user and session ids.
func (s *Sessions) ParseSession(r *http.Request) (uint, string, bool) {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return 0, "", false
	}
	uid, sid, err := s.Verify(c.Value)
	if err != nil {
		return 0, "", false
	}
	return uid, sid, true
}

// Middleware attaches user and session ids to the request context if present.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if uid, sid, ok := s.ParseSession(r); ok {
			ctx := WithSessionID(WithUserID(r.Context(), uid), sid)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth redirects to /login if not authenticated (HTML) or returns 401 JSON.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if ok && s.verifier != nil && !s.verifier(r.Context(), uid) {
			// Session refers to a deleted user: clear and treat as unauthorized.
			s.ClearSession(w, r)
			ok = false
		}
		if !ok {
			if httpx.WantsJSON(r) {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
