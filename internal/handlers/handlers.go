// Package handlers holds the HTTP handlers. Every handler answers JSON when
// the client asks for it (Accept or Content-Type) and HTML otherwise.
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/internal/chat"
	"github.com/diewo77/go-rems/internal/leads"
	"github.com/diewo77/go-rems/internal/logging"
	"github.com/diewo77/go-rems/internal/moderation"
	"github.com/diewo77/go-rems/internal/services"
	"github.com/diewo77/go-rems/internal/store"
	"github.com/diewo77/go-rems/validation"
	"github.com/diewo77/go-rems/view"
)

// LeadStoreFunc returns the lead store serving a request.
type LeadStoreFunc func(r *http.Request) leads.Store

// SessionLeadStores serves each session from its own in-memory store.
func SessionLeadStores(reg *leads.SessionStores) LeadStoreFunc {
	return func(r *http.Request) leads.Store {
		sid, _ := auth.SessionIDFromContext(r.Context())
		return reg.For(sid)
	}
}

// SharedLeadStore serves every request from s.
func SharedLeadStore(s leads.Store) LeadStoreFunc {
	return func(*http.Request) leads.Store { return s }
}

// classify maps an error to a status, an i18n code and optional details.
func classify(err error) (int, string, any) {
	if v, ok := validation.AsViolations(err); ok {
		return http.StatusUnprocessableEntity, "validation_failed", v
	}
	switch {
	case errors.Is(err, httpx.ErrInvalidID):
		return http.StatusBadRequest, "invalid_id", nil
	case errors.Is(err, store.ErrNotFound), errors.Is(err, leads.ErrNotFound), errors.Is(err, chat.ErrPropertyNotFound):
		return http.StatusNotFound, "not_found", nil
	case errors.Is(err, services.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthorized", nil
	case errors.Is(err, auth.ErrBadCredentials):
		return http.StatusUnauthorized, "bad_credentials", nil
	case errors.Is(err, services.ErrForbidden), errors.Is(err, gate.ErrUnauthorized), errors.Is(err, gate.ErrNoRole):
		return http.StatusForbidden, "forbidden", nil
	case errors.Is(err, moderation.ErrNotAgent):
		return http.StatusConflict, "not_agent", nil
	case errors.Is(err, leads.ErrInvalidStatus):
		return http.StatusBadRequest, "invalid_status", nil
	case errors.Is(err, chat.ErrEmptyMessage):
		return http.StatusBadRequest, "empty_message", nil
	case errors.Is(err, chat.ErrMessageTooLong):
		return http.StatusBadRequest, "message_too_long", nil
	case errors.Is(err, chat.ErrInvalidClientID):
		return http.StatusBadRequest, "invalid_client_id", nil
	case errors.Is(err, chat.ErrReceiverRequired):
		return http.StatusBadRequest, "receiver_required", nil
	case errors.Is(err, chat.ErrClientIDConflict):
		return http.StatusConflict, "client_id_conflict", nil
	}
	return http.StatusInternalServerError, "db_error", nil
}

func wantsJSON(r *http.Request) bool {
	return httpx.WantsJSON(r) || httpx.IsJSONBody(r)
}

// fail reports err. HTML clients are sent back to back with a flash code,
// or get the error page when back is empty.
func fail(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, back string, err error) {
	status, code, details := classify(err)
	if status >= http.StatusInternalServerError {
		logging.Error(log, "handlers", r.Method+" "+r.URL.Path, code, nil, err)
	}
	if wantsJSON(r) {
		httpx.JSONError(w, status, code, details)
		return
	}
	if status == http.StatusUnauthorized && code == "unauthorized" {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if back != "" {
		redirect(w, r, back, code)
		return
	}
	page(w, r, log, status, "error.html", map[string]any{"Status": status, "Code": code})
}

// page renders an HTML page and logs template failures.
func page(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, status int, name string, data map[string]any) {
	if err := view.RenderStatus(w, r, status, name, data); err != nil {
		logging.Error(log, "handlers", "page", name, nil, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// redirect sends a 303 to path, carrying flash as ?flash=.
func redirect(w http.ResponseWriter, r *http.Request, path, flash string) {
	if flash != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + "flash=" + url.QueryEscape(flash)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// done answers a successful mutation: payload as JSON, or a redirect.
func done(w http.ResponseWriter, r *http.Request, status int, payload any, back, flash string) {
	if wantsJSON(r) {
		httpx.JSON(w, status, payload)
		return
	}
	redirect(w, r, back, flash)
}

func currentUserID(r *http.Request) uint {
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}
