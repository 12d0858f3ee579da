package model

// Permission represents a string code for a specific system action.
type Permission string

const (
	// PermissionRegistrationsRead allows viewing and searching applications.
	PermissionRegistrationsRead Permission = "registrations:read"

	// PermissionRegistrationsWrite allows editing fields and documents of applications.
	PermissionRegistrationsWrite Permission = "registrations:write"

	// PermissionRegistrationsReview allows approving and rejecting applications.
	PermissionRegistrationsReview Permission = "registrations:review"

	// PermissionRegistrationsDelete allows deleting applications.
	PermissionRegistrationsDelete Permission = "registrations:delete"

	// PermissionRegistrationsExport allows downloading the application spreadsheet.
	PermissionRegistrationsExport Permission = "registrations:export"

	// PermissionAdmissionWrite allows opening and closing admission windows.
	PermissionAdmissionWrite Permission = "admission:write"

	// PermissionContentWrite allows managing news and hero images.
	PermissionContentWrite Permission = "content:write"

	// PermissionDashboardRead allows viewing application statistics.
	PermissionDashboardRead Permission = "dashboard:read"

	// PermissionAdminsRead allows viewing staff accounts.
	PermissionAdminsRead Permission = "admins:read"

	// PermissionAdminsWrite allows creating, updating, and deleting staff accounts.
	PermissionAdminsWrite Permission = "admins:write"
)

// AllPermissions is a slice of all available permissions.
var AllPermissions = []Permission{
	PermissionRegistrationsRead,
	PermissionRegistrationsWrite,
	PermissionRegistrationsReview,
	PermissionRegistrationsDelete,
	PermissionRegistrationsExport,
	PermissionAdmissionWrite,
	PermissionContentWrite,
	PermissionDashboardRead,
	PermissionAdminsRead,
	PermissionAdminsWrite,
}
