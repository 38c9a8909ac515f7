package policy

import (
	"context"

	"github.com/diewo77/go-rems/gate"
)

// Ownable is implemented by models that belong to one profile: a property
// to its agent, a review, visit or favorite to its author.
type Ownable interface {
	GetUserID() uint
}

// ListingScoped is implemented by records attached to a listing, so the
// listing agent can read them without owning them.
type ListingScoped interface {
	ListingAgentID() uint
}

// OwnershipPolicy lets owners do anything with their records and lets a
// listing agent view the visits and reviews of their listings.
type OwnershipPolicy struct{}

func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can allows nil resources (list/create are covered by role permissions)
// and denies resources that are not Ownable.
func (p *OwnershipPolicy) Can(_ context.Context, userID uint, action gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	if ownable.GetUserID() == userID {
		return true
	}
	if action != gate.ActionView && action != gate.ActionList {
		return false
	}
	scoped, ok := resource.(ListingScoped)
	return ok && scoped.ListingAgentID() != 0 && scoped.ListingAgentID() == userID
}

// AdminBypassPolicy wraps another policy and always allows admins.
type AdminBypassPolicy struct {
	inner       gate.Policy[uint]
	isAdminFunc func(ctx context.Context, userID uint) bool
}

func NewAdminBypassPolicy(inner gate.Policy[uint], isAdminFunc func(ctx context.Context, userID uint) bool) *AdminBypassPolicy {
	return &AdminBypassPolicy{
		inner:       inner,
		isAdminFunc: isAdminFunc,
	}
}

func (p *AdminBypassPolicy) Can(ctx context.Context, userID uint, action gate.Action, resource any) bool {
	if p.isAdminFunc(ctx, userID) {
		return true
	}
	return p.inner.Can(ctx, userID, action, resource)
}
