package services

import (
	"context"
	"math"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/store"
	"github.com/diewo77/go-rems/validation"
)

const ResourceReview = "review"

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type Reviews struct {
	db    *gorm.DB
	authz Authorizer
}

func NewReviews(db *gorm.DB, authz Authorizer) *Reviews {
	return &Reviews{db: db, authz: authz}
}

// Submit validates the rating before anything reaches the store and saves
// the review unapproved.
func (s *Reviews) Submit(ctx context.Context, userID, propertyID uint, in ReviewInput) (*models.Review, error) {
	if userID == 0 {
		return nil, ErrUnauthenticated
	}
	in.Comment = strings.TrimSpace(in.Comment)
	if v := validation.Struct(in); !v.Empty() {
		return nil, v
	}
	if err := authorize(ctx, s.authz, userID, gate.ActionCreate, ResourceReview, nil); err != nil {
		return nil, err
	}
	p, err := store.Get[models.Property](ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if !p.Approved {
		return nil, ErrNotFound
	}
	r := &models.Review{UserID: userID, PropertyID: propertyID, Rating: in.Rating, Comment: in.Comment, Approved: false}
	if err := store.Insert(ctx, s.db, r); err != nil {
		return nil, err
	}
	return r, nil
}

// approvedReviews are the reviews shown on the property page.
func approvedReviews(ctx context.Context, db *gorm.DB, propertyID uint) ([]models.Review, error) {
	var out []models.Review
	err := db.WithContext(ctx).Preload("User").
		Where("property_id = ? AND approved = ?", propertyID, true).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// averageRating is rounded to one decimal; zero when there are no reviews.
func averageRating(reviews []models.Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return math.Round(float64(sum)/float64(len(reviews))*10) / 10
}
