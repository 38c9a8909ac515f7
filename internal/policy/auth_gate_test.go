package policy_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/diewo77/go-rems/auth"
	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/internal/db"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/policy"
	"github.com/diewo77/go-rems/internal/testdb"
)

type people struct {
	customer, agent, admin models.Profile
}

func seedPeople(t *testing.T, gdb *gorm.DB) people {
	t.Helper()
	require.NoError(t, db.SeedPermissions(gdb))
	p := people{
		customer: models.Profile{Email: "c@x.io", PasswordHash: "x", Role: models.RoleCustomer},
		agent:    models.Profile{Email: "a@x.io", PasswordHash: "x", Role: models.RoleAgent},
		admin:    models.Profile{Email: "root@x.io", PasswordHash: "x", Role: models.RoleAdmin},
	}
	for _, pr := range []*models.Profile{&p.customer, &p.agent, &p.admin} {
		require.NoError(t, gdb.Create(pr).Error)
	}
	return p
}

func TestDBRoleResolver(t *testing.T) {
	gdb := testdb.SQLite(t)
	p := seedPeople(t, gdb)
	r := policy.NewDBRoleResolver(gdb)
	ctx := context.Background()

	role, err := r.Resolve(ctx, p.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "customer", role.Name())
	assert.True(t, role.HasPermission(gate.NewPermission("review", gate.ActionCreate)))
	assert.False(t, role.HasPermission(gate.NewPermission("property", gate.ActionCreate)))

	role, err = r.Resolve(ctx, p.admin.ID)
	require.NoError(t, err)
	assert.True(t, role.HasPermission(gate.NewPermission("review", gate.ActionApprove)))

	role, err = r.Resolve(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, role)
}

func TestAuthGate_OwnershipAndAdminBypass(t *testing.T) {
	gdb := testdb.SQLite(t)
	p := seedPeople(t, gdb)
	ag := policy.NewAuthGate(gdb, time.Minute)
	ctx := context.Background()
	listing := &models.Property{AgentID: p.agent.ID}

	assert.NoError(t, ag.Authorize(ctx, p.agent.ID, gate.ActionUpdate, policy.ResourceProperty, listing))
	assert.NoError(t, ag.Authorize(ctx, p.admin.ID, gate.ActionDelete, policy.ResourceProperty, listing))
	assert.ErrorIs(t, ag.Authorize(ctx, p.customer.ID, gate.ActionUpdate, policy.ResourceProperty, listing), gate.ErrUnauthorized)

	other := &models.Property{AgentID: p.agent.ID + 100}
	assert.ErrorIs(t, ag.Authorize(ctx, p.agent.ID, gate.ActionDelete, policy.ResourceProperty, other), gate.ErrUnauthorized)
}

func TestAuthGate_InvalidateDropsCachedRole(t *testing.T) {
	gdb := testdb.SQLite(t)
	p := seedPeople(t, gdb)
	ag := policy.NewAuthGate(gdb, time.Hour)
	ctx := auth.WithUserID(context.Background(), p.agent.ID)

	require.Equal(t, "agent", ag.Role(ctx))
	require.NoError(t, gdb.Delete(&models.Profile{}, p.agent.ID).Error)
	assert.Equal(t, "agent", ag.Role(ctx), "cached until invalidated")

	ag.Invalidate(p.agent.ID)
	assert.Equal(t, "", ag.Role(ctx))
}

func TestAuthGate_RequireRole(t *testing.T) {
	gdb := testdb.SQLite(t)
	p := seedPeople(t, gdb)
	ag := policy.NewAuthGate(gdb, time.Minute)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := ag.RequireRole(models.RoleAgent)(ok)

	cases := []struct {
		name   string
		userID uint
		json   bool
		want   int
	}{
		{"agent", p.agent.ID, false, http.StatusNoContent},
		{"customer", p.customer.ID, false, http.StatusForbidden},
		{"anonymous html", 0, false, http.StatusSeeOther},
		{"anonymous json", 0, true, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/agent/listings", nil)
			if tc.json {
				req.Header.Set("Accept", "application/json")
			}
			if tc.userID != 0 {
				req = req.WithContext(auth.WithUserID(req.Context(), tc.userID))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestAuthGate_RequireAdmin(t *testing.T) {
	gdb := testdb.SQLite(t)
	p := seedPeople(t, gdb)
	ag := policy.NewAuthGate(gdb, time.Minute)
	h := ag.RequireAdmin()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))

	for id, want := range map[uint]int{p.admin.ID: http.StatusOK, p.agent.ID: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin/listings", nil)
		req = req.WithContext(auth.WithUserID(req.Context(), id))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code)
	}
}

func TestAuthGate_RequirePermissionModeration(t *testing.T) {
	gdb := testdb.SQLite(t)
	p := seedPeople(t, gdb)
	ag := policy.NewAuthGate(gdb, time.Minute)
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	cases := []struct {
		name   string
		userID uint
		action gate.Action
		want   int
	}{
		{"agent updates property", p.agent.ID, gate.ActionUpdate, http.StatusNoContent},
		{"agent approves property", p.agent.ID, gate.ActionApprove, http.StatusForbidden},
		{"agent opens the queue", p.agent.ID, gate.ActionModerate, http.StatusForbidden},
		{"customer rejects property", p.customer.ID, gate.ActionReject, http.StatusForbidden},
		{"admin approves property", p.admin.ID, gate.ActionApprove, http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := ag.RequirePermission(policy.ResourceProperty, tc.action)(ok)
			req := httptest.NewRequest(http.MethodPost, "/admin/listings/1/approve", nil)
			req.Header.Set("Accept", "application/json")
			req = req.WithContext(auth.WithUserID(req.Context(), tc.userID))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}
