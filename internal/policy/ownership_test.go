package policy_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-rems/gate"
	"github.com/diewo77/go-rems/internal/models"
	"github.com/diewo77/go-rems/internal/policy"
)

// mockNonOwnable is a test resource that does NOT implement Ownable.
type mockNonOwnable struct {
	ID uint
}

func TestOwnershipPolicy_NilResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()

	if !p.Can(ctx, 1, gate.ActionList, nil) {
		t.Error("Expected Can to return true for nil resource")
	}
	if !p.Can(ctx, 1, gate.ActionCreate, nil) {
		t.Error("Expected Can to return true for nil resource on create")
	}
}

func TestOwnershipPolicy_AgentOwnsListing(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()
	listing := &models.Property{ID: 7, AgentID: 42}

	for _, action := range []gate.Action{gate.ActionView, gate.ActionUpdate, gate.ActionDelete} {
		if !p.Can(ctx, 42, action, listing) {
			t.Errorf("Expected agent to own listing for %s", action)
		}
		if p.Can(ctx, 99, action, listing) {
			t.Errorf("Expected other user to be denied for %s", action)
		}
	}
}

func TestOwnershipPolicy_AuthorOwnsReviewAndVisit(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()

	if !p.Can(ctx, 5, gate.ActionDelete, &models.Review{UserID: 5}) {
		t.Error("Expected reviewer to own the review")
	}
	if p.Can(ctx, 6, gate.ActionDelete, &models.ScheduledVisit{UserID: 5}) {
		t.Error("Expected another customer to be denied the visit")
	}
}

func TestOwnershipPolicy_ListingAgentReadsVisitsAndReviews(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	ctx := context.Background()
	listing := &models.Property{ID: 7, AgentID: 42}
	visit := &models.ScheduledVisit{UserID: 5, PropertyID: 7, Property: listing}
	review := &models.Review{UserID: 5, PropertyID: 7, Property: listing}

	for _, res := range []any{visit, review} {
		if !p.Can(ctx, 42, gate.ActionView, res) {
			t.Errorf("Expected listing agent to view %T", res)
		}
		if p.Can(ctx, 42, gate.ActionDelete, res) {
			t.Errorf("Expected listing agent to be denied deleting %T", res)
		}
		if p.Can(ctx, 43, gate.ActionView, res) {
			t.Errorf("Expected another agent to be denied %T", res)
		}
	}
	if p.Can(ctx, 42, gate.ActionView, &models.ScheduledVisit{UserID: 5, PropertyID: 7}) {
		t.Error("Expected a visit without its property to be denied")
	}
}

func TestOwnershipPolicy_NonOwnableResource(t *testing.T) {
	p := policy.NewOwnershipPolicy()
	if p.Can(context.Background(), 1, gate.ActionView, &mockNonOwnable{ID: 1}) {
		t.Error("Expected non-Ownable resource to be denied")
	}
}

func TestAdminBypassPolicy(t *testing.T) {
	isAdmin := func(_ context.Context, userID uint) bool { return userID == 1 }
	p := policy.NewAdminBypassPolicy(policy.NewOwnershipPolicy(), isAdmin)
	ctx := context.Background()
	listing := &models.Property{AgentID: 42}

	if !p.Can(ctx, 1, gate.ActionDelete, listing) {
		t.Error("Expected admin to bypass ownership")
	}
	if !p.Can(ctx, 42, gate.ActionUpdate, listing) {
		t.Error("Expected owner to have access")
	}
	if p.Can(ctx, 99, gate.ActionUpdate, listing) {
		t.Error("Expected non-owner non-admin to be denied")
	}
}
