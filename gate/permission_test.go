package gate_test

import (
	"testing"

	"github.com/diewo77/go-rems/gate"
)

func TestPermission_Parse(t *testing.T) {
	tests := []struct {
		perm     gate.Permission
		resource string
		action   gate.Action
	}{
		{"property:create", "property", gate.ActionCreate},
		{"review:approve", "review", gate.ActionApprove},
		{"profile:*", "profile", "*"},
		{"broken", "", ""},
	}
	for _, tt := range tests {
		res, act := tt.perm.Parse()
		if res != tt.resource || act != tt.action {
			t.Errorf("%q: got (%q, %q), want (%q, %q)", tt.perm, res, act, tt.resource, tt.action)
		}
	}
}

func TestPermission_Matches(t *testing.T) {
	tests := []struct {
		name      string
		grant     gate.Permission
		requested gate.Permission
		want      bool
	}{
		{"exact", "property:create", "property:create", true},
		{"different action", "property:create", "property:delete", false},
		{"resource wildcard", "review:*", "review:approve", true},
		{"wildcard other resource", "review:*", "property:approve", false},
		{"super admin", gate.PermissionSuperAdmin, "profile:reject", true},
		{"malformed grant", "property", "property:view", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.grant.Matches(tt.requested); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewPermission(t *testing.T) {
	if p := gate.NewPermission("visit", gate.ActionCreate); p != "visit:create" {
		t.Errorf("got %q", p)
	}
}

func TestStaticRole(t *testing.T) {
	agent := gate.NewStaticRole("agent", "property:*", "visit:list")

	if agent.Name() != "agent" {
		t.Errorf("unexpected name %q", agent.Name())
	}
	if !agent.HasPermission("property:update") {
		t.Error("agent should update properties")
	}
	if agent.HasPermission("review:approve") {
		t.Error("agent must not moderate reviews")
	}
	if len(agent.Permissions()) != 2 {
		t.Errorf("expected 2 permissions, got %d", len(agent.Permissions()))
	}
}
