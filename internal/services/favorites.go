package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/store"
)

type Favorites struct {
	db *gorm.DB
}

func NewFavorites(db *gorm.DB) *Favorites {
	return &Favorites{db: db}
}

// Toggle adds or removes the favorite and returns the new state.
func (s *Favorites) Toggle(ctx context.Context, userID, propertyID uint) (bool, error) {
	if userID == 0 {
		return false, ErrUnauthenticated
	}
	res := s.db.WithContext(ctx).Where("user_id = ? AND property_id = ?", userID, propertyID).Delete(&models.Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		return false, nil
	}
	if _, err := store.Get[models.Property](ctx, s.db, propertyID); err != nil {
		return false, err
	}
	if err := store.Insert(ctx, s.db, &models.Favorite{UserID: userID, PropertyID: propertyID}); err != nil {
		if store.IsUniqueViolation(err) {
			return true, nil
		}
		return false, err
	}
	return true, nil
}

// List returns the user's favorited properties, most recent first.
func (s *Favorites) List(ctx context.Context, userID uint) ([]models.Property, error) {
	var out []models.Property
	err := s.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.property_id = properties.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC").
		Find(&out).Error
	return out, err
}
