package handlers

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/internal/leads"
	"github.com/diewo77/go-rems/internal/services"
	"github.com/diewo77/go-rems/validation"
)

// visitDateLayout is what <input type="datetime-local"> submits.
const visitDateLayout = "2006-01-02T15:04"

type PropertyHandler struct {
	listings  *services.Listings
	reviews   *services.Reviews
	favorites *services.Favorites
	visits    *services.Visits
	leadsFor  LeadStoreFunc
	log       logrus.FieldLogger
}

func NewPropertyHandler(listings *services.Listings, reviews *services.Reviews, favorites *services.Favorites, visits *services.Visits, leadsFor LeadStoreFunc, log logrus.FieldLogger) *PropertyHandler {
	return &PropertyHandler{listings: listings, reviews: reviews, favorites: favorites, visits: visits, leadsFor: leadsFor, log: log}
}

func parseFilter(r *http.Request) services.Filter {
	q := r.URL.Query()
	f := services.Filter{Search: strings.TrimSpace(q.Get("search"))}
	f.MinPrice, _ = strconv.ParseFloat(q.Get("min_price"), 64)
	f.MaxPrice, _ = strconv.ParseFloat(q.Get("max_price"), 64)
	f.Bedrooms, _ = strconv.Atoi(q.Get("bedrooms"))
	f.Bathrooms, _ = strconv.Atoi(q.Get("bathrooms"))
	return f
}

// Index is the public search page.
func (h *PropertyHandler) Index(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r)
	props, err := h.listings.Search(r.Context(), f)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, map[string]any{"properties": props, "filter": f})
		return
	}
	page(w, r, h.log, http.StatusOK, "properties/index.html", map[string]any{"Properties": props, "Filter": f})
}

func (h *PropertyHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	uid := currentUserID(r)
	d, err := h.listings.Detail(r.Context(), id, uid)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	if wantsJSON(r) {
		httpx.JSON(w, http.StatusOK, d)
		return
	}
	page(w, r, h.log, http.StatusOK, "properties/show.html", map[string]any{
		"Detail":   d,
		"Property": d.Property,
		"UserID":   uid,
		"IsAgent":  uid != 0 && uid == d.Property.AgentID,
	})
}

func propertyPath(id uint) string { return fmt.Sprintf("/properties/%d", id) }

// firstCode picks a stable violation code for a flash message.
func firstCode(v validation.Violations) string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return v[keys[0]]
}

// failForm is fail for form posts: violations go back as a flash code.
func failForm(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, back string, err error) {
	if v, ok := validation.AsViolations(err); ok && !wantsJSON(r) {
		redirect(w, r, back, firstCode(v))
		return
	}
	fail(w, r, log, back, err)
}

func (h *PropertyHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	back := propertyPath(id)
	var in services.ReviewInput
	if err := httpx.Decode(r, &in, func() {
		in.Rating, _ = strconv.Atoi(r.FormValue("rating"))
		in.Comment = r.FormValue("comment")
	}); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	review, err := h.reviews.Submit(r.Context(), currentUserID(r), id, in)
	if err != nil {
		failForm(w, r, h.log, back, err)
		return
	}
	done(w, r, http.StatusCreated, review, back, "review_submitted")
}

func (h *PropertyHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	on, err := h.favorites.Toggle(r.Context(), currentUserID(r), id)
	if err != nil {
		fail(w, r, h.log, propertyPath(id), err)
		return
	}
	flash := "favorite_removed"
	if on {
		flash = "favorite_added"
	}
	done(w, r, http.StatusOK, map[string]bool{"favorited": on}, propertyPath(id), flash)
}

func (h *PropertyHandler) Visit(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	var in services.VisitInput
	if err := httpx.Decode(r, &in, func() {
		in.VisitDate, _ = time.ParseInLocation(visitDateLayout, r.FormValue("visit_date"), time.Local)
		in.Notes = r.FormValue("notes")
	}); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	visit, err := h.visits.Schedule(r.Context(), currentUserID(r), id, in)
	if err != nil {
		failForm(w, r, h.log, propertyPath(id), err)
		return
	}
	done(w, r, http.StatusCreated, visit, propertyPath(id), "visit_scheduled")
}

// Interest records a lead for the listing agent.
func (h *PropertyHandler) Interest(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.PathID(r, "id")
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	back := propertyPath(id)
	var in leads.Interest
	if err := httpx.Decode(r, &in, func() {
		in.Name = r.FormValue("name")
		in.Email = r.FormValue("email")
		in.Phone = r.FormValue("phone")
		in.Message = r.FormValue("message")
	}); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_form", nil)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if v := validation.Struct(in); !v.Empty() {
		failForm(w, r, h.log, back, v)
		return
	}
	p, err := h.listings.Get(r.Context(), id)
	if err != nil {
		fail(w, r, h.log, "", err)
		return
	}
	lead, err := h.leadsFor(r).Add(r.Context(), leads.Lead{
		PropertyID: p.ID,
		AgentID:    p.AgentID,
		BuyerID:    currentUserID(r),
		BuyerName:  in.Name,
		BuyerEmail: in.Email,
		BuyerPhone: strings.TrimSpace(in.Phone),
		Message:    strings.TrimSpace(in.Message),
	})
	if err != nil {
		fail(w, r, h.log, back, err)
		return
	}
	done(w, r, http.StatusCreated, lead, back, "interest_sent")
}
