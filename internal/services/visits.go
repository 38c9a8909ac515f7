package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/store"
	"github.com/diewo77/go-rems/validation"
)

// VisitInput is the visit request form. There is no double-booking,
// past-date or availability check.
type VisitInput struct {
	VisitDate time.Time `json:"visit_date" validate:"required"`
	Notes     string    `json:"notes" validate:"max=2000"`
}

const ResourceVisit = "visit"

type Visits struct {
	db    *gorm.DB
	authz Authorizer
}

func NewVisits(db *gorm.DB, authz Authorizer) *Visits {
	return &Visits{db: db, authz: authz}
}

func (s *Visits) Schedule(ctx context.Context, userID, propertyID uint, in VisitInput) (*models.ScheduledVisit, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	in.Notes = strings.TrimSpace(in.Notes)
	if v := validation.Struct(in); !v.Empty() {
		return nil, v
	}
	if _, err := store.Get[models.Property](ctx, s.db, propertyID); err != nil {
		return nil, err
	}
	v := &models.ScheduledVisit{
		UserID:     userID,
		PropertyID: propertyID,
		VisitDate:  in.VisitDate,
		Notes:      in.Notes,
		Status:     models.VisitScheduled,
	}
	if err := store.Insert(ctx, s.db, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ListForCustomer returns the customer's visits, soonest first.
func (s *Visits) ListForCustomer(ctx context.Context, userID uint) ([]models.ScheduledVisit, error) {
	var out []models.ScheduledVisit
	err := s.db.WithContext(ctx).Preload("Property").
		Where("user_id = ?", userID).
		Order("visit_date ASC, id ASC").
		Find(&out).Error
	return out, err
}

// AgentLeads returns visits on the agent's properties, latest date first.
func (s *Visits) AgentLeads(ctx context.Context, agentID uint) ([]models.ScheduledVisit, error) {
	var out []models.ScheduledVisit
	err := s.db.WithContext(ctx).Preload("Property").Preload("User").
		Joins("JOIN properties ON properties.id = scheduled_visits.property_id").
		Where("properties.agent_id = ?", agentID).
		Order("scheduled_visits.visit_date DESC, scheduled_visits.id DESC").
		Find(&out).Error
	return out, err
}

// Get returns one visit to the customer who booked it or to the agent of the
// visited listing.
func (s *Visits) Get(ctx context.Context, viewerID, id uint) (*models.ScheduledVisit, error) {
	v, err := store.Get[models.ScheduledVisit](ctx, s.db, id, "Property", "User")
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.authz, viewerID, gate.ActionView, ResourceVisit, v); err != nil {
		return nil, err
	}
	return v, nil
}
