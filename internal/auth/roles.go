package auth

import "upnd.org/internal/jurisdiction"

// Role is one of the eight fixed account roles. The catalog is closed: roles
// are not rows in a table, and permission sets are flat with no inheritance.
type Role string

const (
	RoleNationalAdmin     Role = "National Admin"
	RoleProvincialAdmin   Role = "Provincial Admin"
	RoleDistrictAdmin     Role = "District Admin"
	RoleConstituencyAdmin Role = "Constituency Admin"
	RoleWardAdmin         Role = "Ward Admin"
	RoleBranchAdmin       Role = "Branch Admin"
	RoleSectionAdmin      Role = "Section Admin"
	RoleMember            Role = "Member"
)

// Permission tags. Opaque strings checked by membership test only.
const (
	PermApproveMembers     = "approve_members"
	PermManageMembers      = "manage_members"
	PermManageDisciplinary = "manage_disciplinary"
	PermManageEvents       = "manage_events"
	PermSendCommunications = "send_communications"
	PermManageCards        = "manage_cards"
	PermExportData         = "export_data"
	PermViewStatistics     = "view_statistics"
	PermSystemSettings     = "system_settings"
	PermViewOwnProfile     = "view_own_profile"
)

// rolePermissions is the whole access-control policy. Sets are flat: no
// role inherits from another.
var rolePermissions = map[Role][]string{
	RoleNationalAdmin: {
		PermApproveMembers, PermManageMembers, PermManageDisciplinary,
		PermManageEvents, PermSendCommunications, PermManageCards,
		PermExportData, PermViewStatistics, PermSystemSettings,
	},
	RoleProvincialAdmin: {
		PermApproveMembers, PermManageMembers, PermManageDisciplinary,
		PermManageEvents, PermSendCommunications, PermManageCards,
		PermExportData, PermViewStatistics,
	},
	RoleDistrictAdmin: {
		PermApproveMembers, PermManageMembers, PermManageDisciplinary,
		PermManageEvents, PermSendCommunications,
		PermExportData, PermViewStatistics,
	},
	RoleConstituencyAdmin: {
		PermApproveMembers, PermManageMembers, PermManageEvents,
		PermViewStatistics,
	},
	RoleWardAdmin: {
		PermApproveMembers, PermManageMembers, PermManageEvents,
		PermViewStatistics,
	},
	RoleBranchAdmin: {
		PermApproveMembers, PermManageMembers, PermViewStatistics,
	},
	RoleSectionAdmin: {
		PermApproveMembers, PermManageMembers,
	},
	RoleMember: {
		PermViewOwnProfile,
	},
}

// PermissionsFor returns the permission set for a role. Unknown roles get
// an empty set: access control fails closed.
func PermissionsFor(role Role) []string {
	perms, ok := rolePermissions[role]
	if !ok {
		return []string{}
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// KnownRole reports whether role is in the catalog.
func KnownRole(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}

// DefaultLevel maps a role to the organizational tier it normally operates
// at. Admin accounts may override this explicitly at creation.
func DefaultLevel(role Role) jurisdiction.Level {
	switch role {
	case RoleNationalAdmin:
		return jurisdiction.LevelNational
	case RoleProvincialAdmin:
		return jurisdiction.LevelProvincial
	case RoleDistrictAdmin:
		return jurisdiction.LevelDistrict
	case RoleConstituencyAdmin:
		return jurisdiction.LevelConstituency
	case RoleWardAdmin:
		return jurisdiction.LevelWard
	case RoleBranchAdmin:
		return jurisdiction.LevelBranch
	case RoleSectionAdmin:
		return jurisdiction.LevelSection
	default:
		return jurisdiction.LevelSection
	}
}
