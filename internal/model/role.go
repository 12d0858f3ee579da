package model

import "fmt"

// Role is a staff account's access level.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleStaff      Role = "staff"
)

// rolePermissions is the fixed grant table.
var rolePermissions = map[Role][]Permission{
	RoleSuperAdmin: AllPermissions,
	RoleStaff: {
		PermissionRegistrationsRead,
		PermissionRegistrationsWrite,
		PermissionRegistrationsReview,
		PermissionRegistrationsExport,
		PermissionContentWrite,
		PermissionDashboardRead,
	},
}

// ParseRole converts a raw string to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := rolePermissions[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Permissions returns the permission codes granted to the role.
func (r Role) Permissions() []string {
	perms := rolePermissions[r]
	out := make([]string, len(perms))
	for i, p := range perms {
		out[i] = string(p)
	}
	return out
}
