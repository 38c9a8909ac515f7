package handlers

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/moderation"
	"github.com/diewo77/go-rems/internal/services"
	"github.com/diewo77/go-rems/internal/store"
)

// AdminHandler serves the three moderation queues and the grant table.
type AdminHandler struct {
	db       *gorm.DB
	listings *moderation.ListingGate
	reviews  *moderation.ReviewGate
	agents   *moderation.AgentGate
	profiles *services.Profiles
	log      logrus.FieldLogger
}

func NewAdminHandler(db *gorm.DB, listings *moderation.ListingGate, reviews *moderation.ReviewGate, agents *moderation.AgentGate, profiles *services.Profiles, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{db: db, listings: listings, reviews: reviews, agents: agents, profiles: profiles, log: log}
}

// decide runs one approve/reject decision. On failure the queue page is
// shown again from the store, so the row stays visible.
func (h *AdminHandler) decide(w http.ResponseWriter, r *http.Request, back, flash string, fn func(context.Context, uint) error) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, back, err)
		return
	}
	if err := fn(r.Context(), id); err != nil {
		fail(w, r, h.log, back, err)
		return
	}
	h.log.WithFields(logrus.Fields{"id": id, "decision": flash, "admin_id": currentUserID(r)}).Info("moderation decision")
	done(w, r, http.StatusOK, map[string]any{"id": id, "result": flash}, back, flash)
}

func (h *AdminHandler) Listings(w http.ResponseWriter, r *http.Request) {
	props, err := h.listings.ListUnapproved(r.Context())
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"properties": props})
		return
	}
	page(w, r, h.log, http.StatusOK, "admin/listings.html", map[string]any{"Properties": props})
}

func (h *AdminHandler) ApproveListing(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "/admin/listings", "listing_approved", h.listings.Approve)
}

func (h *AdminHandler) RejectListing(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "/admin/listings", "listing_rejected", h.listings.Reject)
}

func (h *AdminHandler) Reviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListUnapproved(r.Context())
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"reviews": reviews})
		return
	}
	page(w, r, h.log, http.StatusOK, "admin/reviews.html", map[string]any{"Reviews": reviews})
}

func (h *AdminHandler) ApproveReview(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "/admin/reviews", "review_approved", h.reviews.Approve)
}

func (h *AdminHandler) RejectReview(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "/admin/reviews", "review_rejected", h.reviews.Reject)
}

// Agents lists every agent, verified or not.
func (h *AdminHandler) Agents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.agents.ListAgents(r.Context())
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"agents": agents})
		return
	}
	page(w, r, h.log, http.StatusOK, "admin/agents.html", map[string]any{"Agents": agents})
}

func (h *AdminHandler) ApproveAgent(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "/admin/agents", "agent_approved", h.agents.Approve)
}

func (h *AdminHandler) RejectAgent(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "/admin/agents", "agent_rejected", h.agents.Reject)
}

// Users lists every profile, newest first, with a count per role.
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	dir, err := h.profiles.List(r.Context())
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		users := make([]CurrentUser, len(dir.Profiles))
		for i := range dir.Profiles {
			users[i] = currentUser(&dir.Profiles[i])
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"users": users, "counts": dir.Counts, "total": dir.Total})
		return
	}
	page(w, r, h.log, http.StatusOK, "admin/users.html", map[string]any{
		"Directory": dir,
		"Roles":     []models.Role{models.RoleCustomer, models.RoleAgent, models.RoleAdmin},
	})
}

// Permissions shows the seeded grants grouped by role.
func (h *AdminHandler) Permissions(w http.ResponseWriter, r *http.Request) {
	perms, err := store.List[models.Permission](r.Context(), h.db, func(q *gorm.DB) *gorm.DB {
		return q.Order("role, resource_type, action")
	})
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	byRole := make(map[models.Role][]models.Permission)
	for _, p := range perms {
		byRole[p.Role] = append(byRole[p.Role], p)
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"permissions": byRole})
		return
	}
	page(w, r, h.log, http.StatusOK, "admin/permissions.html", map[string]any{
		"PermissionsByRole": byRole,
		"Roles":             []models.Role{models.RoleCustomer, models.RoleAgent, models.RoleAdmin},
	})
}
