package enums

import "slices"

// UserRole is the access level carried in access tokens.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

var userRoles = []UserRole{UserRoleAdmin, UserRoleUser}

func (r UserRole) String() string { return string(r) }

func (r UserRole) IsValid() bool { return slices.Contains(userRoles, r) }

func ParseUserRole(value string) (UserRole, error) {
	return parse("user role", value, userRoles)
}
