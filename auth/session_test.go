package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCookie(t *testing.T, s *Sessions, uid uint) (*http.Cookie, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	sid, err := s.CreateSession(rec, uid)
	require.NoError(t, err)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0], sid
}

func TestSessions_RoundTrip(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	c, sid := sessionCookie(t, s, 42)
	assert.True(t, c.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	uid, gotSID, ok := s.ParseSession(req)
	require.True(t, ok)
	assert.Equal(t, uint(42), uid)
	assert.Equal(t, sid, gotSID)
}

func TestSessions_RejectsForeignSecret(t *testing.T) {
	c, _ := sessionCookie(t, NewSessions("one", time.Hour), 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	_, _, ok := NewSessions("two", time.Hour).ParseSession(req)
	assert.False(t, ok)
}

func TestSessions_Expired(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	token, _, err := s.Issue(5)
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestRequireAuth_Anonymous(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	h := s.Middleware(s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "application/json")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestRequireAuth_VerifierRejectsDeletedUser(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	var ended string
	s.OnSessionEnd(func(sid string) { ended = sid })
	s.SetUserVerifier(func(_ context.Context, uid uint) bool { return uid != 9 })

	h := s.Middleware(s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserIDFromContext(r.Context())
		assert.Equal(t, uint(3), uid)
		w.WriteHeader(http.StatusNoContent)
	})))

	good, _ := sessionCookie(t, s, 3)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(good)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	gone, sid := sessionCookie(t, s, 9)
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(gone)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, sid, ended)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "s3cret"))
	assert.ErrorIs(t, CheckPassword(hash, "nope"), ErrBadCredentials)
}
