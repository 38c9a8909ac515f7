package gate

import (
	"context"
	"errors"
)

// HybridGate combines role permissions with resource-specific policies:
//  1. the subject must be non-zero
//  2. the subject's role must grant resource:action
//  3. when a resource is given and a policy is registered, the policy
//     (usually ownership) must allow it
type HybridGate[U comparable] struct {
	resolver RoleResolver[U]
	policies *Gate[U]
}

func NewHybridGate[U comparable](resolver RoleResolver[U]) *HybridGate[U] {
	return &HybridGate[U]{
		resolver: resolver,
		policies: NewGate[U](),
	}
}

// Register adds a resource policy used in step 3.
func (g *HybridGate[U]) Register(resourceType string, p Policy[U]) {
	g.policies.Register(resourceType, p)
}

// Authorize returns ErrNoRole when the subject resolves to no role and
// ErrUnauthorized when the role or the policy denies. Resource types without
// a policy are covered by the role permission alone.
func (g *HybridGate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	if err := g.permitted(ctx, user, action, resourceType); err != nil {
		return err
	}
	if resource == nil {
		return nil
	}
	err := g.policies.Authorize(ctx, user, action, resourceType, resource)
	if errors.Is(err, ErrNoPolicyDefined) {
		return nil
	}
	return err
}

func (g *HybridGate[U]) permitted(ctx context.Context, user U, action Action, resourceType string) error {
	var zero U
	if user == zero {
		return ErrUnauthorized
	}
	role, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return err
	}
	if role == nil {
		return ErrNoRole
	}
	if !role.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	return nil
}

func (g *HybridGate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanRole checks only the role permission, without the resource policy.
// Templates use it to show or hide buttons before a resource is loaded.
func (g *HybridGate[U]) CanRole(ctx context.Context, user U, action Action, resourceType string) bool {
	return g.permitted(ctx, user, action, resourceType) == nil
}

// RoleOf returns the resolved role name, or "" when none.
func (g *HybridGate[U]) RoleOf(ctx context.Context, user U) string {
	var zero U
	if user == zero {
		return ""
	}
	role, err := g.resolver.Resolve(ctx, user)
	if err != nil || role == nil {
		return ""
	}
	return role.Name()
}
