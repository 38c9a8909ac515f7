package moderation

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/models"
)

// ListingGate is the admin queue of properties waiting for approval.
type ListingGate struct {
	q queue[models.Property]
}

func NewListingGate(db *gorm.DB, opts ...Option) *ListingGate {
	o := buildOptions(opts)
	return &ListingGate{q: queue[models.Property]{db: db, gate: GateListing, preload: []string{"Agent"}, log: o.log, obs: o.obs}}
}

// ListUnapproved returns every property with approved = false, oldest first.
func (g *ListingGate) ListUnapproved(ctx context.Context) ([]models.Property, error) {
	return g.q.unapproved(ctx)
}

// Approve makes the listing visible in public search when it is available.
func (g *ListingGate) Approve(ctx context.Context, id uint) error { return g.q.approve(ctx, id) }

// Reject deletes the listing.
func (g *ListingGate) Reject(ctx context.Context, id uint) error { return g.q.reject(ctx, id) }
