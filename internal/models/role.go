package models

// Role is a user's role within a single project.
type Role string

const (
	RoleOwner       Role = "OWNER"
	RoleContributor Role = "CONTRIBUTOR"
	RoleViewer      Role = "VIEWER"
)

func ValidRole(r Role) bool {
	switch r {
	case RoleOwner, RoleContributor, RoleViewer:
		return true
	}
	return false
}
