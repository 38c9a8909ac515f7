package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/leads"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/store"
)

// Viewer is who a dashboard is built for. Leads is the lead store bound to
// the viewer's session and may be nil for non-agents.
type Viewer struct {
	Profile *models.Profile
	Leads   leads.Store
}

// Dashboard builds the landing page data for one role.
type Dashboard interface {
	Template() string
	Build(ctx context.Context, v Viewer) (map[string]any, error)
}

// Dashboards picks the Dashboard matching a role.
type Dashboards struct {
	customer Dashboard
	agent    Dashboard
	admin    Dashboard
}

func NewDashboards(db *gorm.DB) *Dashboards {
	return &Dashboards{
		customer: &CustomerDashboard{db: db, now: time.Now},
		agent:    &AgentDashboard{db: db},
		admin:    &AdminDashboard{db: db},
	}
}

// For returns the dashboard for role; unknown roles get the customer one.
func (d *Dashboards) For(role models.Role) Dashboard {
	switch role {
	case models.RoleAdmin:
		return d.admin
	case models.RoleAgent:
		return d.agent
	default:
		return d.customer
	}
}

type CustomerDashboard struct {
	db  *gorm.DB
	now func() time.Time
}

func (*CustomerDashboard) Template() string { return "dashboard/customer.html" }

func (c *CustomerDashboard) Build(ctx context.Context, v Viewer) (map[string]any, error) {
	uid := v.Profile.ID
	favorites, err := store.Count[models.Favorite](ctx, c.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ?", uid)
	})
	if err != nil {
		return nil, err
	}
	upcoming, err := store.Count[models.ScheduledVisit](ctx, c.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("user_id = ? AND visit_date >= ?", uid, c.now())
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"FavoritesCount":      favorites,
		"UpcomingVisitsCount": upcoming,
	}, nil
}

type AgentDashboard struct {
	db *gorm.DB
}

func (*AgentDashboard) Template() string { return "dashboard/agent.html" }

func (a *AgentDashboard) Build(ctx context.Context, v Viewer) (map[string]any, error) {
	uid := v.Profile.ID
	listings, err := store.Count[models.Property](ctx, a.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("agent_id = ?", uid)
	})
	if err != nil {
		return nil, err
	}
	pending, err := store.Count[models.Property](ctx, a.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("agent_id = ? AND approved = ?", uid, false)
	})
	if err != nil {
		return nil, err
	}
	counts := map[leads.Status]int{}
	total := 0
	if v.Leads != nil {
		if counts, err = v.Leads.CountByStatus(ctx, uid); err != nil {
			return nil, err
		}
		for _, n := range counts {
			total += n
		}
	}
	return map[string]any{
		"ListingsCount":        listings,
		"PendingListingsCount": pending,
		"LeadsCount":           total,
		"LeadsByStatus":        counts,
		"LeadStatuses":         leads.Statuses,
		"Verified":             v.Profile.Verified,
	}, nil
}

type AdminDashboard struct {
	db *gorm.DB
}

func (*AdminDashboard) Template() string { return "dashboard/admin.html" }

func (a *AdminDashboard) Build(ctx context.Context, _ Viewer) (map[string]any, error) {
	unapproved := func(q *gorm.DB) *gorm.DB { return q.Where("approved = ?", false) }
	listings, err := store.Count[models.Property](ctx, a.db, unapproved)
	if err != nil {
		return nil, err
	}
	reviews, err := store.Count[models.Review](ctx, a.db, unapproved)
	if err != nil {
		return nil, err
	}
	agents, err := store.Count[models.Profile](ctx, a.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("role = ? AND verified = ?", models.RoleAgent, false)
	})
	if err != nil {
		return nil, err
	}
	users, err := store.Count[models.Profile](ctx, a.db)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"PendingListings":  listings,
		"PendingReviews":   reviews,
		"UnverifiedAgents": agents,
		"UsersCount":       users,
	}, nil
}
