package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/i18n"
	"github.com/diewo77/go-rems/internal/logging"
)

const langCookie = "lang"

// logRequests writes one line per request.
func logRequests(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := httpx.NewStatusRecorder(w)
		next.ServeHTTP(rec, r)
		fields := logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rec.Status,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if uid, ok := auth.UserIDFromContext(r.Context()); ok {
			fields["user_id"] = uid
		}
		log.WithFields(fields).Info("request")
	})
}

// recoverPanics turns a panic into a 500 internal_error.
func recoverPanics(log *logrus.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logging.Error(log, "server", "recoverPanics", r.Method+" "+r.URL.Path, nil, fmt.Errorf("panic: %v", v))
				if httpx.WantsJSON(r) {
					httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
					return
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withPreferences picks the language from ?lang=, the lang cookie or
// Accept-Language, in that order.
func withPreferences(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie(langCookie); err == nil && c.Value != "" {
			lang = i18n.Normalize(c.Value)
		}
		if q := r.URL.Query().Get("lang"); q != "" {
			lang = i18n.Normalize(q)
			http.SetCookie(w, &http.Cookie{
				Name:     langCookie,
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 30,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}
