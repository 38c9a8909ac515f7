package handlers

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/internal/leads"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/services"
	"github.com/diewo77/go-rems/validation"
)

// AgentHandler serves the agent area: listings, visits and leads.
type AgentHandler struct {
	listings *services.Listings
	visits   *services.Visits
	leadsFor LeadStoreFunc
	log      logrus.FieldLogger
}

func NewAgentHandler(listings *services.Listings, visits *services.Visits, leadsFor LeadStoreFunc, log logrus.FieldLogger) *AgentHandler {
	return &AgentHandler{listings: listings, visits: visits, leadsFor: leadsFor, log: log}
}

func decodeListing(r *http.Request, in *services.ListingInput) error {
	return httpx.Decode(r, in, func() {
		in.Title = r.FormValue("title")
		in.Description = r.FormValue("description")
		in.Address = r.FormValue("address")
		in.City = r.FormValue("city")
		in.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
		in.Bedrooms, _ = strconv.Atoi(r.FormValue("bedrooms"))
		in.Bathrooms, _ = strconv.Atoi(r.FormValue("bathrooms"))
		in.SquareFeet, _ = strconv.Atoi(r.FormValue("square_feet"))
		in.PropertyType = r.FormValue("property_type")
		in.ImageURL = r.FormValue("image_url")
		in.Status = r.FormValue("status")
	})
}

func listingForm(p *models.Property) services.ListingInput {
	return services.ListingInput{
		Title:        p.Title,
		Description:  p.Description,
		Address:      p.Address,
		City:         p.City,
		Price:        p.Price,
		Bedrooms:     p.Bedrooms,
		Bathrooms:    p.Bathrooms,
		SquareFeet:   p.SquareFeet,
		PropertyType: p.PropertyType,
		ImageURL:     p.ImageURL,
		Status:       string(p.Status),
	}
}

func (h *AgentHandler) formPage(w http.ResponseWriter, r *http.Request, status int, id uint, in services.ListingInput, errs validation.Violations) {
	page(w, r, h.log, status, "agent/listing_form.html", map[string]any{
		"IsEdit":   id != 0,
		"ID":       id,
		"Form":     in,
		"Errors":   errs,
		"Statuses": models.PropertyStatuses,
	})
}

func (h *AgentHandler) Listings(w http.ResponseWriter, r *http.Request) {
	props, err := h.listings.ListByAgent(r.Context(), currentUserID(r))
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"properties": props})
		return
	}
	page(w, r, h.log, http.StatusOK, "agent/listings.html", map[string]any{"Properties": props})
}

func (h *AgentHandler) New(w http.ResponseWriter, r *http.Request) {
	h.formPage(w, r, http.StatusOK, 0, services.ListingInput{Status: string(models.StatusAvailable)}, nil)
}

func (h *AgentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in services.ListingInput
	if err := decodeListing(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	p, err := h.listings.Create(r.Context(), currentUserID(r), in)
	if err != nil {
		if v, ok := validation.AsViolations(err); ok && !wantsJSON(r) {
			h.formPage(w, r, http.StatusUnprocessableEntity, 0, in, v)
			return
		}
		fail(w, r, h.log, "/agent/listings", err)
		return
	}
	h.log.WithFields(logrus.Fields{"property_id": p.ID, "agent_id": p.AgentID}).Info("listing created, awaiting approval")
	done(w, r, http.StatusCreated, p, "/agent/listings", "listing_saved")
}

// Edit shows the form for one of the agent's listings.
func (h *AgentHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	p, err := h.listings.Get(r.Context(), id)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if p.AgentID != currentUserID(r) {
		fail(w, r, h.log, "", services.ErrForbidden)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, p)
		return
	}
	h.formPage(w, r, http.StatusOK, id, listingForm(p), nil)
}

func (h *AgentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	var in services.ListingInput
	if err := decodeListing(r, &in); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	p, err := h.listings.Update(r.Context(), currentUserID(r), id, in)
	if err != nil {
		if v, ok := validation.AsViolations(err); ok && !wantsJSON(r) {
			h.formPage(w, r, http.StatusUnprocessableEntity, id, in, v)
			return
		}
		fail(w, r, h.log, "/agent/listings", err)
		return
	}
	done(w, r, http.StatusOK, p, "/agent/listings", "listing_saved")
}

func (h *AgentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if err := h.listings.Delete(r.Context(), currentUserID(r), id); err != nil {
		fail(w, r, h.log, "/agent/listings", err)
		return
	}
	done(w, r, http.StatusOK, map[string]uint{"deleted": id}, "/agent/listings", "listing_deleted")
}

// Visits lists visits booked on the agent's listings.
func (h *AgentHandler) Visits(w http.ResponseWriter, r *http.Request) {
	visits, err := h.visits.AgentLeads(r.Context(), currentUserID(r))
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"visits": visits})
		return
	}
	page(w, r, h.log, http.StatusOK, "agent/visits.html", map[string]any{"Visits": visits})
}

func (h *AgentHandler) Leads(w http.ResponseWriter, r *http.Request) {
	uid := currentUserID(r)
	list, err := h.leadsFor(r).ListForAgent(r.Context(), uid)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"leads": list, "statuses": leads.Statuses})
		return
	}
	props, err := h.listings.ListByAgent(r.Context(), uid)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	titles := make(map[uint]string, len(props))
	for _, p := range props {
		titles[p.ID] = p.Title
	}
	page(w, r, h.log, http.StatusOK, "agent/leads.html", map[string]any{
		"Leads":    list,
		"Titles":   titles,
		"Statuses": leads.Statuses,
	})
}

// LeadStatus moves a lead to any status, including its current one.
func (h *AgentHandler) LeadStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := httpx.Decode(r, &body, func() { body.Status = r.FormValue("status") }); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	status, err := leads.ParseStatus(body.Status)
	if err != nil {
		fail(w, r, h.log, "/agent/leads", err)
		return
	}
	store := h.leadsFor(r)
	lead, err := store.Get(r.Context(), id)
	if err != nil {
		fail(w, r, h.log, "/agent/leads", err)
		return
	}
	if lead.AgentID != currentUserID(r) {
		fail(w, r, h.log, "/agent/leads", services.ErrForbidden)
		return
	}
	lead, err = store.SetStatus(r.Context(), id, status)
	if err != nil {
		fail(w, r, h.log, "/agent/leads", err)
		return
	}
	done(w, r, http.StatusOK, lead, "/agent/leads", "lead_updated")
}
