package moderation

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/models"
)

// ReviewGate is the admin queue of reviews hidden from property pages.
type ReviewGate struct {
	q queue[models.Review]
}

func NewReviewGate(db *gorm.DB, opts ...Option) *ReviewGate {
	o := buildOptions(opts)
	return &ReviewGate{q: queue[models.Review]{db: db, gate: GateReview, preload: []string{"User", "Property"}, log: o.log, obs: o.obs}}
}

// ListUnapproved returns pending reviews with reviewer and property loaded.
func (g *ReviewGate) ListUnapproved(ctx context.Context) ([]models.Review, error) {
	return g.q.unapproved(ctx)
}

func (g *ReviewGate) Approve(ctx context.Context, id uint) error { return g.q.approve(ctx, id) }

func (g *ReviewGate) Reject(ctx context.Context, id uint) error { return g.q.reject(ctx, id) }
