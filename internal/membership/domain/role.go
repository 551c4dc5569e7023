package domain

import "errors"

const (
	RoleCaptain int64 = 1
	RoleOwner   int64 = 2
	RoleAdmin   int64 = 3
)

type Role struct {
	ID          int64
	Name        string
	Description string
}

type Permission struct {
	ID          int64
	Name        string
	Description string
}

// Permission ids referenced by code. The full catalog lives in the seed
// migration.
const (
	PermViewUsers       int64 = 1
	PermCreateUsers     int64 = 2
	PermEditUsers       int64 = 3
	PermDeleteUsers     int64 = 4
	PermViewRoles       int64 = 5
	PermAssignRoles     int64 = 6
	PermViewPermissions int64 = 7
	PermEditPermissions int64 = 8
	PermManageSystem    int64 = 9
	PermInviteMembers   int64 = 10
)

// Permission names checked by route guards.
const (
	PermNameViewUsers     = "view_users"
	PermNameEditUsers     = "edit_users"
	PermNameDeleteUsers   = "delete_users"
	PermNameAssignRoles   = "assign_roles"
	PermNameInviteMembers = "invite_members"
)

var ErrUnknownRole = errors.New("domain: unknown role")

var permissionExclusions = map[int64][]int64{
	RoleCaptain: {},
	RoleOwner:   {PermManageSystem},
	RoleAdmin:   {PermDeleteUsers, PermAssignRoles, PermEditPermissions, PermManageSystem},
}

// ExcludedPermissions returns the permission ids withheld from a new member
// of roleID.
func ExcludedPermissions(roleID int64) ([]int64, error) {
	ex, ok := permissionExclusions[roleID]
	if !ok {
		return nil, ErrUnknownRole
	}
	return append([]int64(nil), ex...), nil
}

// FanOut returns the catalog permissions granted to a member of roleID.
func FanOut(roleID int64, catalog []Permission) ([]Permission, error) {
	ex, err := ExcludedPermissions(roleID)
	if err != nil {
		return nil, err
	}
	skip := make(map[int64]struct{}, len(ex))
	for _, id := range ex {
		skip[id] = struct{}{}
	}

	out := make([]Permission, 0, len(catalog))
	for _, p := range catalog {
		if _, ok := skip[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out, nil
}
