package policy

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/httpx"
	"github.com/diewo77/go-rems/internal/models"
)

// Resource types guarded by ownership.
const (
	ResourceProperty = "property"
	ResourceReview   = "review"
	ResourceVisit    = "visit"
	ResourceFavorite = "favorite"
	ResourceLead     = "lead"
	ResourceProfile  = "profile"
)

// AuthGate holds the HybridGate and its role cache.
// Use this as the central authorization point of the application.
type AuthGate struct {
	Gate          *gate.HybridGate[uint]
	CacheResolver *gate.CachedResolver[uint]
}

// NewAuthGate creates the gate with a role cache of cacheTTL and registers
// the ownership policies. Admins bypass ownership.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[uint](NewDBRoleResolver(db), cacheTTL)
	ag := &AuthGate{
		Gate:          gate.NewHybridGate[uint](cached),
		CacheResolver: cached,
	}
	owner := NewAdminBypassPolicy(NewOwnershipPolicy(), ag.IsAdmin)
	for _, rt := range []string{ResourceProperty, ResourceReview, ResourceVisit, ResourceFavorite, ResourceLead, ResourceProfile} {
		ag.RegisterPolicy(rt, owner)
	}
	return ag
}

// RegisterPolicy adds a resource policy for a resource type.
func (ag *AuthGate) RegisterPolicy(resourceType string, p gate.Policy[uint]) {
	ag.Gate.Register(resourceType, p)
}

// Authorize implements services.Authorizer.
func (ag *AuthGate) Authorize(ctx context.Context, userID uint, action gate.Action, resourceType string, resource any) error {
	return ag.Gate.Authorize(ctx, userID, action, resourceType, resource)
}

// Can checks the user from the request context.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.Can(ctx, userID, action, resourceType, resource)
}

// CanRole checks only role permissions (no ownership check).
// Templates use it to show or hide links.
func (ag *AuthGate) CanRole(ctx context.Context, action gate.Action, resourceType string) bool {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanRole(ctx, userID, action, resourceType)
}

// Role returns the role name of the user in ctx, or "".
func (ag *AuthGate) Role(ctx context.Context) string {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return ""
	}
	return ag.Gate.RoleOf(ctx, userID)
}

// IsAdmin reports whether userID holds the superadmin grant.
func (ag *AuthGate) IsAdmin(ctx context.Context, userID uint) bool {
	role, err := ag.CacheResolver.Resolve(ctx, userID)
	return err == nil && role != nil && role.HasPermission(gate.PermissionSuperAdmin)
}

// Invalidate clears the cached role of one user. Moderation decisions call it.
func (ag *AuthGate) Invalidate(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

// InvalidateAll clears the entire role cache.
func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

func deny(w http.ResponseWriter, r *http.Request, status int) {
	if httpx.WantsJSON(r) {
		code := "forbidden"
		if status == http.StatusUnauthorized {
			code = "unauthorized"
		}
		httpx.JSONError(w, status, code, nil)
		return
	}
	if status == http.StatusUnauthorized {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Error(w, "Forbidden", status)
}

// RequirePermission returns middleware that checks a role permission.
// Moderation actions also need the superadmin grant, so an agent's
// "property:*" never covers approving listings.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				deny(w, r, http.StatusUnauthorized)
				return
			}
			if !ag.CanRole(r.Context(), action, resourceType) || (action.IsModeration() && !ag.IsAdmin(r.Context(), userID)) {
				deny(w, r, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole returns middleware that only lets the given roles through.
func (ag *AuthGate) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := auth.UserIDFromContext(r.Context()); !ok {
				deny(w, r, http.StatusUnauthorized)
				return
			}
			current := models.Role(ag.Role(r.Context()))
			for _, role := range roles {
				if current == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, r, http.StatusForbidden)
		})
	}
}

// RequireAdmin returns middleware that only allows the "*:*" grant.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				deny(w, r, http.StatusUnauthorized)
				return
			}
			if !ag.IsAdmin(r.Context(), userID) {
				deny(w, r, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
