// Package gate provides role-based authorization for the REMS marketplace.
// A Gate is a registry of policies keyed by resource type ("property",
// "review", "visit"...); each Policy answers whether a subject may perform
// an action on one resource. Roles (customer, agent, admin) carry
// "resource:action" permissions and are looked up through a RoleResolver.
//
// The package is generic over the subject type:
//   - Gate[uint] for user-ID based checks (what the web app uses)
//   - Gate[*Claims] for token-claims based checks
package gate

import "context"

// Gate is a policy-only authorization checkpoint.
// U is the subject type (comparable so the zero value means "anonymous").
type Gate[U comparable] struct {
	policies map[string]Policy[U]
}

// NewGate creates an empty Gate ready to register policies.
func NewGate[U comparable]() *Gate[U] {
	return &Gate[U]{policies: make(map[string]Policy[U])}
}

// Register adds a policy for a resource type, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Authorize returns ErrUnauthorized for an anonymous subject or a denied
// action, and ErrNoPolicyDefined when resourceType has no policy.
func (g *Gate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	p, ok := g.policies[resourceType]
	if !ok {
		return ErrNoPolicyDefined
	}
	if !p.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can reports whether Authorize would succeed.
func (g *Gate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}
