package domain

import "testing"

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"farmer", RoleFarmer, true},
		{" Customer ", RoleCustomer, true},
		{"ADMIN", RoleAdmin, true},
		{"root", Role("root"), false},
		{"", Role(""), false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRole(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestRoleDashboardPath(t *testing.T) {
	if RoleAdmin.DashboardPath() != "/dashboard/admin" {
		t.Error("admin dashboard path")
	}
	if RoleFarmer.DashboardPath() != "/dashboard/farmer" {
		t.Error("farmer dashboard path")
	}
	if RoleCustomer.DashboardPath() != "/dashboard/customer" {
		t.Error("customer dashboard path")
	}
}

func TestSelfRegistrable(t *testing.T) {
	if RoleAdmin.SelfRegistrable() {
		t.Error("admin must not be self registrable")
	}
	if !RoleFarmer.SelfRegistrable() || !RoleCustomer.SelfRegistrable() {
		t.Error("farmer and customer must be self registrable")
	}
}

func TestSessionIs(t *testing.T) {
	var nilSession *Session
	if nilSession.Is(RoleCustomer) {
		t.Error("nil session must not hold any role")
	}

	anon := &Session{Role: RoleCustomer}
	if anon.Is(RoleCustomer) {
		t.Error("session without a user must not hold any role")
	}

	s := &Session{UserID: 3, Role: RoleFarmer}
	if !s.Is(RoleFarmer) || s.Is(RoleCustomer) || s.Is(RoleAdmin) {
		t.Error("role check mismatch")
	}
}
