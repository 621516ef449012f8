package domain

import "strings"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleFarmer   Role = "farmer"
	RoleCustomer Role = "customer"
)

// ParseRole maps user input onto the closed set of roles.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFarmer, RoleCustomer:
		return true
	}
	return false
}

// DashboardPath is where a freshly logged in user of this role lands.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/dashboard/admin"
	case RoleFarmer:
		return "/dashboard/farmer"
	default:
		return "/dashboard/customer"
	}
}

// SelfRegistrable reports whether the role can be picked on the public register form.
func (r Role) SelfRegistrable() bool {
	return r == RoleFarmer || r == RoleCustomer
}

func (r Role) String() string {
	return string(r)
}
