// Package store holds the single-row gorm operations shared by the domain
// packages. Every helper maps "no row" to ErrNotFound and wraps any other
// failure so callers can tell the two apart with errors.Is.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// Scope narrows a query; it is gorm's scope signature.
type Scope = func(*gorm.DB) *gorm.DB

// Get loads the row with primary key id.
func Get[T any](ctx context.Context, db *gorm.DB, id uint, preload ...string) (*T, error) {
	var rec T
	q := db.WithContext(ctx)
	for _, p := range preload {
		q = q.Preload(p)
	}
	if err := q.First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select %T %d: %w", rec, id, err)
	}
	return &rec, nil
}

// List returns every row matching scopes.
func List[T any](ctx context.Context, db *gorm.DB, scopes ...Scope) ([]T, error) {
	var recs []T
	if err := db.WithContext(ctx).Scopes(scopes...).Find(&recs).Error; err != nil {
		var zero T
		return nil, fmt.Errorf("select %T: %w", zero, err)
	}
	return recs, nil
}

// Count counts rows matching scopes.
func Count[T any](ctx context.Context, db *gorm.DB, scopes ...Scope) (int64, error) {
	var n int64
	var zero T
	if err := db.WithContext(ctx).Model(&zero).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %T: %w", zero, err)
	}
	return n, nil
}

// Insert creates rec and fills its primary key.
func Insert[T any](ctx context.Context, db *gorm.DB, rec *T) error {
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("insert %T: %w", rec, err)
	}
	return nil
}

// Update sets columns on the row with primary key id. Setting a column to the
// value it already holds succeeds, so flag flips are idempotent.
func Update[T any](ctx context.Context, db *gorm.DB, id uint, values map[string]any) error {
	var zero T
	res := db.WithContext(ctx).Model(&zero).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update %T %d: %w", zero, id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// Some drivers report 0 for unchanged rows; tell that apart from "missing".
	n, err := Count[T](ctx, db, func(q *gorm.DB) *gorm.DB { return q.Where("id = ?", id) })
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete permanently removes the row with primary key id.
func Delete[T any](ctx context.Context, db *gorm.DB, id uint) error {
	var zero T
	res := db.WithContext(ctx).Delete(&zero, id)
	if res.Error != nil {
		return fmt.Errorf("delete %T %d: %w", zero, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsUniqueViolation reports whether err comes from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
