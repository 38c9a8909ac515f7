package models

import "testing"

func TestOwnership(t *testing.T) {
	tests := []struct {
		name  string
		owned interface{ GetUserID() uint }
		want  uint
	}{
		{"property belongs to agent", &Property{AgentID: 4}, 4},
		{"review belongs to author", &Review{UserID: 5}, 5},
		{"visit belongs to customer", &ScheduledVisit{UserID: 6}, 6},
		{"favorite belongs to user", &Favorite{UserID: 7}, 7},
		{"lead belongs to agent", &Lead{AgentID: 8}, 8},
		{"profile belongs to itself", &Profile{ID: 9}, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.owned.GetUserID(); got != tt.want {
				t.Errorf("GetUserID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRole(t *testing.T) {
	if !RoleCustomer.SelfAssignable() || !RoleAgent.SelfAssignable() {
		t.Error("customer and agent should be self assignable")
	}
	if RoleAdmin.SelfAssignable() {
		t.Error("admin must not be self assignable")
	}
	if Role("owner").Valid() {
		t.Error("unknown role should be invalid")
	}
}

func TestPropertyStatus(t *testing.T) {
	for _, s := range PropertyStatuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if PropertyStatus("rented").Valid() {
		t.Error("rented is not a status")
	}
}

func TestProperty_Listed(t *testing.T) {
	tests := []struct {
		approved bool
		status   PropertyStatus
		want     bool
	}{
		{true, StatusAvailable, true},
		{false, StatusAvailable, false},
		{true, StatusSold, false},
		{false, StatusSold, false},
	}
	for _, tt := range tests {
		p := &Property{Approved: tt.approved, Status: tt.status}
		if got := p.Listed(); got != tt.want {
			t.Errorf("approved=%v status=%s: Listed() = %v", tt.approved, tt.status, got)
		}
	}
}

func TestValidRating(t *testing.T) {
	for r, want := range map[int]bool{0: false, 1: true, 5: true, 6: false} {
		if ValidRating(r) != want {
			t.Errorf("ValidRating(%d) != %v", r, want)
		}
	}
}

func TestMessage_Involves(t *testing.T) {
	m := &Message{SenderID: 1, ReceiverID: 2}
	if !m.Involves(1) || !m.Involves(2) || m.Involves(3) {
		t.Error("Involves mismatch")
	}
}

func TestProfile_DisplayName(t *testing.T) {
	if (&Profile{Email: "a@b.c"}).DisplayName() != "a@b.c" {
		t.Error("expected email fallback")
	}
	if (&Profile{Email: "a@b.c", FullName: "Ann"}).DisplayName() != "Ann" {
		t.Error("expected full name")
	}
}
