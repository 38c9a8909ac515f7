package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-rems/gate"
)

func newMarketGate() *gate.HybridGate[uint] {
	resolver := gate.NewStaticResolver[uint]()
	resolver.Set(1, gate.NewStaticRole("customer", "property:view", "review:create", "favorite:*"))
	resolver.Set(2, gate.NewStaticRole("agent", "property:*", "lead:*"))
	resolver.Set(3, gate.NewStaticRole("admin", gate.PermissionSuperAdmin))

	g := gate.NewHybridGate[uint](resolver)
	g.Register("property", gate.PolicyFunc[uint](func(_ context.Context, user uint, _ gate.Action, res any) bool {
		if user == 3 {
			return true
		}
		l, ok := res.(*listing)
		return ok && l.AgentID == user
	}))
	return g
}

func TestHybridGate_RolePermission(t *testing.T) {
	g := newMarketGate()
	ctx := context.Background()

	tests := []struct {
		name   string
		user   uint
		action gate.Action
		res    string
		want   bool
	}{
		{"anonymous", 0, gate.ActionView, "property", false},
		{"customer views", 1, gate.ActionView, "property", true},
		{"customer creates listing", 1, gate.ActionCreate, "property", false},
		{"agent creates listing", 2, gate.ActionCreate, "property", true},
		{"agent approves review", 2, gate.ActionApprove, "review", false},
		{"admin approves review", 3, gate.ActionApprove, "review", true},
		{"unknown user", 9, gate.ActionView, "property", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.CanRole(ctx, tt.user, tt.action, tt.res); got != tt.want {
				t.Errorf("CanRole = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHybridGate_OwnershipPolicy(t *testing.T) {
	g := newMarketGate()
	ctx := context.Background()

	own := &listing{AgentID: 2}
	foreign := &listing{AgentID: 5}

	if err := g.Authorize(ctx, 2, gate.ActionUpdate, "property", own); err != nil {
		t.Errorf("agent should update own listing: %v", err)
	}
	if err := g.Authorize(ctx, 2, gate.ActionUpdate, "property", foreign); err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized for foreign listing, got %v", err)
	}
	if !g.Can(ctx, 3, gate.ActionDelete, "property", foreign) {
		t.Error("admin should bypass ownership")
	}
	if err := g.Authorize(ctx, 2, gate.ActionCreate, "property", nil); err != nil {
		t.Errorf("nil resource skips policy: %v", err)
	}
}

func TestHybridGate_Errors(t *testing.T) {
	g := newMarketGate()
	ctx := context.Background()

	if err := g.Authorize(ctx, 9, gate.ActionView, "property", nil); err != gate.ErrNoRole {
		t.Errorf("expected ErrNoRole for a user without role, got %v", err)
	}
	if err := g.Authorize(ctx, 0, gate.ActionView, "property", nil); err != gate.ErrUnauthorized {
		t.Errorf("expected ErrUnauthorized for anonymous, got %v", err)
	}
	// lead has no registered policy: the role grant decides
	if err := g.Authorize(ctx, 2, gate.ActionUpdate, "lead", &listing{AgentID: 5}); err != nil {
		t.Errorf("unpoliced resource should follow the role: %v", err)
	}
}

func TestHybridGate_RoleOf(t *testing.T) {
	g := newMarketGate()
	ctx := context.Background()

	if got := g.RoleOf(ctx, 2); got != "agent" {
		t.Errorf("RoleOf(2) = %q", got)
	}
	if got := g.RoleOf(ctx, 0); got != "" {
		t.Errorf("RoleOf(0) = %q", got)
	}
	if got := g.RoleOf(ctx, 42); got != "" {
		t.Errorf("RoleOf(42) = %q", got)
	}
}
