package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/store"
	"github.com/diewo77/go-rems/validation"
)

const ResourceProperty = "property"

// ListingInput is the agent's listing form.
type ListingInput struct {
	Title        string  `json:"title" validate:"required,max=255"`
	Description  string  `json:"description" validate:"max=10000"`
	Address      string  `json:"address" validate:"required,max=255"`
	City         string  `json:"city" validate:"required,max=120"`
	Price        float64 `json:"price" validate:"gt=0"`
	Bedrooms     int     `json:"bedrooms" validate:"gte=0,lte=100"`
	Bathrooms    int     `json:"bathrooms" validate:"gte=0,lte=100"`
	SquareFeet   int     `json:"square_feet" validate:"gte=0"`
	PropertyType string  `json:"property_type" validate:"max=50"`
	ImageURL     string  `json:"image_url" validate:"omitempty,url,max=512"`
	Status       string  `json:"status" validate:"omitempty,oneof=available pending under_contract sold"`
}

func (in *ListingInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.Status == "" {
		in.Status = string(models.StatusAvailable)
	}
}

func (in ListingInput) columns() map[string]any {
	return map[string]any{
		"title":         in.Title,
		"description":   in.Description,
		"address":       in.Address,
		"city":          in.City,
		"price":         in.Price,
		"bedrooms":      in.Bedrooms,
		"bathrooms":     in.Bathrooms,
		"square_feet":   in.SquareFeet,
		"property_type": in.PropertyType,
		"image_url":     in.ImageURL,
		"status":        in.Status,
	}
}

// Filter narrows the public search. Zero values mean "any".
type Filter struct {
	Search    string  `json:"search"`
	MinPrice  float64 `json:"min_price"`
	MaxPrice  float64 `json:"max_price"`
	Bedrooms  int     `json:"bedrooms"`
	Bathrooms int     `json:"bathrooms"`
}

type Listings struct {
	db    *gorm.DB
	authz Authorizer
}

func NewListings(db *gorm.DB, authz Authorizer) *Listings {
	return &Listings{db: db, authz: authz}
}

// Create inserts a listing owned by agentID. Every new listing waits for
// approval whatever the caller sends.
func (s *Listings) Create(ctx context.Context, agentID uint, in ListingInput) (*models.Property, error) {
	if err := authorize(ctx, s.authz, agentID, gate.ActionCreate, ResourceProperty, nil); err != nil {
		return nil, err
	}
	in.normalize()
	if v := validation.Struct(in); !v.Empty() {
		return nil, v
	}
	p := &models.Property{
		AgentID:      agentID,
		Title:        in.Title,
		Description:  in.Description,
		Address:      in.Address,
		City:         in.City,
		Price:        in.Price,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		SquareFeet:   in.SquareFeet,
		PropertyType: in.PropertyType,
		ImageURL:     in.ImageURL,
		Status:       models.PropertyStatus(in.Status),
		Approved:     false,
	}
	if err := store.Insert(ctx, s.db, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update edits the listing fields. The approval flag is not touched.
func (s *Listings) Update(ctx context.Context, userID, id uint, in ListingInput) (*models.Property, error) {
	p, err := store.Get[models.Property](ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(ctx, s.authz, userID, gate.ActionUpdate, ResourceProperty, p); err != nil {
		return nil, err
	}
	in.normalize()
	if v := validation.Struct(in); !v.Empty() {
		return nil, v
	}
	if err := store.Update[models.Property](ctx, s.db, id, in.columns()); err != nil {
		return nil, err
	}
	return store.Get[models.Property](ctx, s.db, id)
}

// Delete removes a listing owned by userID (or any listing for an admin).
func (s *Listings) Delete(ctx context.Context, userID, id uint) error {
	p, err := store.Get[models.Property](ctx, s.db, id)
	if err != nil {
		return err
	}
	if err := authorize(ctx, s.authz, userID, gate.ActionDelete, ResourceProperty, p); err != nil {
		return err
	}
	return store.Delete[models.Property](ctx, s.db, id)
}

func (s *Listings) Get(ctx context.Context, id uint) (*models.Property, error) {
	return store.Get[models.Property](ctx, s.db, id, "Agent")
}

// ListByAgent returns the agent's listings, newest first, approved or not.
func (s *Listings) ListByAgent(ctx context.Context, agentID uint) ([]models.Property, error) {
	return store.List[models.Property](ctx, s.db, func(q *gorm.DB) *gorm.DB {
		return q.Where("agent_id = ?", agentID).Order("created_at DESC, id DESC")
	})
}

// Search returns the public catalogue: approved and available listings only.
func (s *Listings) Search(ctx context.Context, f Filter) ([]models.Property, error) {
	return store.List[models.Property](ctx, s.db, func(q *gorm.DB) *gorm.DB {
		q = q.Where("approved = ? AND status = ?", true, models.StatusAvailable)
		if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
			like := "%" + term + "%"
			q = q.Where("LOWER(title) LIKE ? OR LOWER(address) LIKE ? OR LOWER(city) LIKE ?", like, like, like)
		}
		if f.MinPrice > 0 {
			q = q.Where("price >= ?", f.MinPrice)
		}
		if f.MaxPrice > 0 {
			q = q.Where("price <= ?", f.MaxPrice)
		}
		if f.Bedrooms > 0 {
			q = q.Where("bedrooms = ?", f.Bedrooms)
		}
		if f.Bathrooms > 0 {
			q = q.Where("bathrooms = ?", f.Bathrooms)
		}
		return q.Order("created_at DESC, id DESC")
	})
}

// PropertyDetail is the public property page.
type PropertyDetail struct {
	Property      *models.Property `json:"property"`
	Reviews       []models.Review  `json:"reviews"`
	AverageRating float64          `json:"average_rating"`
	Favorited     bool             `json:"favorited"`
	CanModerate   bool             `json:"-"`
}

// Detail loads a listing for viewerID (0 when anonymous). Unapproved
// listings are only shown to their agent and to admins. Only approved
// reviews are included.
func (s *Listings) Detail(ctx context.Context, id, viewerID uint) (*PropertyDetail, error) {
	p, err := store.Get[models.Property](ctx, s.db, id, "Agent")
	if err != nil {
		return nil, err
	}
	owner := viewerID != 0 && s.authz != nil && s.authz.Authorize(ctx, viewerID, gate.ActionUpdate, ResourceProperty, p) == nil
	if !p.Approved && !owner {
		return nil, ErrNotFound
	}
	reviews, err := approvedReviews(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	d := &PropertyDetail{Property: p, Reviews: reviews, AverageRating: averageRating(reviews), CanModerate: owner}
	if viewerID != 0 {
		n, err := store.Count[models.Favorite](ctx, s.db, func(q *gorm.DB) *gorm.DB {
			return q.Where("user_id = ? AND property_id = ?", viewerID, id)
		})
		if err != nil {
			return nil, err
		}
		d.Favorited = n > 0
	}
	return d, nil
}
