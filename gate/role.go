package gate

import "context"

// Role is a named bundle of permissions (customer, agent, admin).
type Role interface {
	Name() string
	HasPermission(permission Permission) bool
	Permissions() []Permission
}

// RoleResolver resolves a subject to its role. A nil Role with a nil error
// means the subject exists but carries no grants.
type RoleResolver[U any] interface {
	Resolve(ctx context.Context, user U) (Role, error)
}

// StaticRole is an in-memory Role.
type StaticRole struct {
	name        string
	permissions map[Permission]bool
}

// NewStaticRole creates a role with the given permissions.
func NewStaticRole(name string, permissions ...Permission) *StaticRole {
	r := &StaticRole{name: name, permissions: make(map[Permission]bool, len(permissions))}
	for _, perm := range permissions {
		r.permissions[perm] = true
	}
	return r
}

func (r *StaticRole) Name() string { return r.name }

// Permissions returns every permission of the role in no particular order.
func (r *StaticRole) Permissions() []Permission {
	perms := make([]Permission, 0, len(r.permissions))
	for perm := range r.permissions {
		perms = append(perms, perm)
	}
	return perms
}

// HasPermission checks requested against each grant, honouring wildcards.
func (r *StaticRole) HasPermission(requested Permission) bool {
	for perm := range r.permissions {
		if perm.Matches(requested) {
			return true
		}
	}
	return false
}

// StaticResolver maps subjects to roles in memory. Used by tests.
type StaticResolver[U comparable] struct {
	roles map[U]Role
}

func NewStaticResolver[U comparable]() *StaticResolver[U] {
	return &StaticResolver[U]{roles: make(map[U]Role)}
}

// Set assigns a role to a subject.
func (r *StaticResolver[U]) Set(user U, role Role) {
	r.roles[user] = role
}

func (r *StaticResolver[U]) Resolve(_ context.Context, user U) (Role, error) {
	if role, ok := r.roles[user]; ok {
		return role, nil
	}
	return nil, nil
}
