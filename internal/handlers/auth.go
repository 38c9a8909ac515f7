package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/services"
	"github.com/diewo77/go-rems/validation"
)

// CurrentUser is what /me returns.
type CurrentUser struct {
	ID       uint        `json:"id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
	Verified bool        `json:"verified"`
}

func currentUser(p *models.Profile) CurrentUser {
	return CurrentUser{ID: p.ID, Email: p.Email, FullName: p.FullName, Role: p.Role, Verified: p.Verified}
}

type AuthHandler struct {
	profiles *services.Profiles
	sessions *auth.Sessions
	log      logrus.FieldLogger
}

func NewAuthHandler(profiles *services.Profiles, sessions *auth.Sessions, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{profiles: profiles, sessions: sessions, log: log}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		page(w, r, h.log, http.StatusOK, "login.html", nil)
		return
	}

	var in credentials
	if err := httpx.Decode(r, &in, func() {
		in.Email = r.FormValue("email")
		in.Password = r.FormValue("password")
	}); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}

	p, err := h.profiles.Authenticate(r.Context(), in.Email, in.Password)
	if err != nil {
		status, code, _ := classify(err)
		if wantsJSON(r) {
			httpx.JSONError(w, status, code, nil)
			return
		}
		page(w, r, h.log, status, "login.html", map[string]any{"Error": code, "Email": in.Email})
		return
	}
	h.startSession(w, r, p, http.StatusOK)
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		page(w, r, h.log, http.StatusOK, "signup.html", map[string]any{"Form": services.SignUpInput{Role: string(models.RoleCustomer)}})
		return
	}

	var in services.SignUpInput
	if err := httpx.Decode(r, &in, func() {
		in.Email = r.FormValue("email")
		in.Password = r.FormValue("password")
		in.FullName = r.FormValue("full_name")
		in.Role = r.FormValue("role")
	}); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}

	p, err := h.profiles.SignUp(r.Context(), in)
	if err != nil {
		if v, ok := validation.AsViolations(err); ok && !wantsJSON(r) {
			in.Password = ""
			page(w, r, h.log, http.StatusUnprocessableEntity, "signup.html", map[string]any{"Form": in, "Errors": v})
			return
		}
		fail(w, r, h.log, "", err)
		return
	}
	h.log.WithFields(logrus.Fields{"user_id": p.ID, "role": p.Role}).Info("signed up")
	h.startSession(w, r, p, http.StatusCreated)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, p *models.Profile, status int) {
	if _, err := h.sessions.CreateSession(w, p.ID); err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	done(w, r, status, currentUser(p), "/dashboard", "")
}

// Logout ends the session. Session-scoped state is dropped by the
// OnSessionEnd hooks.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSession(w, r)
	done(w, r, http.StatusOK, map[string]bool{"ok": true}, "/", "")
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), currentUserID(r))
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	httpx.JSON(w, http.StatusOK, currentUser(p))
}
