// Package services holds the marketplace use cases that sit between the
// HTTP handlers and the store: listings, reviews, visits, favorites,
// profiles and the role dashboards.
package services

import (
	"context"
	"errors"

	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/internal/store"
)

var (
	ErrNotFound        = store.ErrNotFound
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("authentication required")
)

// Authorizer checks a role permission plus the resource policy.
// *gate.HybridGate[uint] implements it.
type Authorizer interface {
	Authorize(ctx context.Context, userID uint, action gate.Action, resourceType string, resource any) error
}

func authorize(ctx context.Context, a Authorizer, userID uint, action gate.Action, resourceType string, resource any) error {
	if a == nil {
		return nil
	}
	if err := a.Authorize(ctx, userID, action, resourceType, resource); err != nil {
		return ErrForbidden
	}
	return nil
}
