package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/internal/services"
	"github.com/diewo77/go-rems/validation"
)

type DashboardHandler struct {
	profiles   *services.Profiles
	dashboards *services.Dashboards
	favorites  *services.Favorites
	visits     *services.Visits
	leadsFor   LeadStoreFunc
	log        logrus.FieldLogger
}

func NewDashboardHandler(profiles *services.Profiles, dashboards *services.Dashboards, favorites *services.Favorites, visits *services.Visits, leadsFor LeadStoreFunc, log logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{profiles: profiles, dashboards: dashboards, favorites: favorites, visits: visits, leadsFor: leadsFor, log: log}
}

// Show renders the dashboard of the signed-in user's role.
func (h *DashboardHandler) Show(w http.ResponseWriter, r *http.Request) {
	p, err := h.profiles.Get(r.Context(), currentUserID(r))
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	viewer := services.Viewer{Profile: p}
	if p.IsAgent() {
		viewer.Leads = h.leadsFor(r)
	}
	d := h.dashboards.For(p.Role)
	data, err := d.Build(r.Context(), viewer)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"role": p.Role, "user": currentUser(p), "data": data})
		return
	}
	data["Profile"] = p
	page(w, r, h.log, http.StatusOK, d.Template(), data)
}

func (h *DashboardHandler) Profile(w http.ResponseWriter, r *http.Request) {
	uid := currentUserID(r)
	p, err := h.profiles.Get(r.Context(), uid)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if r.Method == http.MethodGet {
		if wantsJSON(r) {
			httpx.JSON(w, http.StatusOK, p)
			return
		}
		page(w, r, h.log, http.StatusOK, "dashboard/profile.html", map[string]any{"Profile": p})
		return
	}

	in := services.ProfileInput{FullName: p.FullName, Phone: p.Phone, Bio: p.Bio, AvatarURL: p.AvatarURL}
	if err := httpx.Decode(r, &in, func() {
		in.FullName = r.FormValue("full_name")
		in.Phone = r.FormValue("phone")
		in.Bio = r.FormValue("bio")
		in.AvatarURL = r.FormValue("avatar_url")
	}); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	updated, err := h.profiles.Update(r.Context(), uid, in)
	if err != nil {
		if v, ok := validation.AsViolations(err); ok && !wantsJSON(r) {
			form := *p
			form.FullName, form.Phone, form.Bio, form.AvatarURL = in.FullName, in.Phone, in.Bio, in.AvatarURL
			page(w, r, h.log, http.StatusUnprocessableEntity, "dashboard/profile.html", map[string]any{"Profile": &form, "Errors": v})
			return
		}
		fail(w, r, h.log, "", err)
		return
	}
	done(w, r, http.StatusOK, updated, "/dashboard/profile", "profile_saved")
}

func (h *DashboardHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	props, err := h.favorites.List(r.Context(), currentUserID(r))
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"properties": props})
		return
	}
	page(w, r, h.log, http.StatusOK, "dashboard/favorites.html", map[string]any{"Properties": props})
}

// Visits lists the customer's own visits.
func (h *DashboardHandler) Visits(w http.ResponseWriter, r *http.Request) {
	visits, err := h.visits.ListForCustomer(r.Context(), currentUserID(r))
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"visits": visits})
		return
	}
	page(w, r, h.log, http.StatusOK, "dashboard/visits.html", map[string]any{"Visits": visits})
}

// Visit shows one visit to its customer or to the listing agent.
func (h *DashboardHandler) Visit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	v, err := h.visits.Get(r.Context(), currentUserID(r), id)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, v)
		return
	}
	page(w, r, h.log, http.StatusOK, "dashboard/visit.html", map[string]any{"Visit": v})
}
