// Package rbac implements the role policy: a fixed rank order over the
// builtin roles plus a capability-set lookup covering custom roles.
package rbac

import "github.com/emeraldsmp/portal/pkg/models"

// roleRanks is total over the builtin roles; unknown (custom) roles rank 0.
var roleRanks = map[string]int{
	models.RoleOwner:   6,
	models.RoleAdmin:   5,
	models.RoleManager: 3,
	models.RoleStaff:   2,
	models.RoleBuilder: 2,
	models.RoleUser:    1,
}

var roleLabels = map[string]string{
	models.RoleOwner:   "Owner",
	models.RoleAdmin:   "Admin",
	models.RoleManager: "Manager",
	models.RoleStaff:   "Staff",
	models.RoleBuilder: "Builder",
	models.RoleUser:    "Member",
}

// RankOf returns the fixed rank of a builtin role, 0 for anything else.
func RankOf(role string) int {
	return roleRanks[role]
}

// IsBuiltin reports whether role is one of the six fixed roles.
func IsBuiltin(role string) bool {
	_, ok := roleRanks[role]
	return ok
}

// Label returns the display name for a builtin role, or the id itself.
func Label(role string) string {
	if l, ok := roleLabels[role]; ok {
		return l
	}
	return role
}

// builtinPerms derives the capability set of a builtin role from its rank.
func builtinPerms(role string) []models.Permission {
	rank := roleRanks[role]
	var perms []models.Permission
	if rank >= roleRanks[models.RoleStaff] {
		perms = append(perms, models.PermAccessAdmin)
	}
	if rank >= roleRanks[models.RoleManager] {
		perms = append(perms, models.PermManageApplications)
	}
	if rank >= roleRanks[models.RoleAdmin] {
		perms = append(perms,
			models.PermManageUsers,
			models.PermManageRoles,
			models.PermManageSettings,
			models.PermManageForms,
			models.PermManageServer,
		)
	}
	if role == models.RoleOwner {
		perms = append(perms, models.PermDeleteUsers)
	}
	return perms
}

// Policy answers permission queries for builtin and custom roles. It is
// immutable once built; rebuild it when custom roles change.
type Policy struct {
	perms map[string]map[models.Permission]bool
}

// New builds a Policy over the builtin roles plus the given custom roles.
func New(custom []models.Role) *Policy {
	p := &Policy{perms: make(map[string]map[models.Permission]bool)}
	for role := range roleRanks {
		p.add(role, builtinPerms(role))
	}
	for _, r := range custom {
		p.add(r.ID, r.Permissions)
	}
	return p
}

func (p *Policy) add(role string, perms []models.Permission) {
	set := make(map[models.Permission]bool, len(perms))
	for _, perm := range perms {
		set[perm] = true
	}
	p.perms[role] = set
}

// Has reports whether the role grants the permission. Unknown roles
// grant nothing.
func (p *Policy) Has(role string, perm models.Permission) bool {
	return p.perms[role][perm]
}

// Roles returns the builtin role set as Role entities, for listing
// alongside custom roles.
func BuiltinRoles() []models.Role {
	ids := []string{
		models.RoleOwner,
		models.RoleAdmin,
		models.RoleManager,
		models.RoleStaff,
		models.RoleBuilder,
		models.RoleUser,
	}
	roles := make([]models.Role, 0, len(ids))
	for _, id := range ids {
		roles = append(roles, models.Role{
			ID:          id,
			Name:        Label(id),
			Permissions: builtinPerms(id),
		})
	}
	return roles
}

// Capability shorthands, kept for the documented rank thresholds.

func CanAccessAdmin(role string) bool {
	return RankOf(role) >= roleRanks[models.RoleStaff]
}

func CanManageRoles(role string) bool {
	return RankOf(role) >= roleRanks[models.RoleAdmin]
}

func CanManageSettings(role string) bool {
	return RankOf(role) >= roleRanks[models.RoleAdmin]
}

func CanReviewApplications(role string) bool {
	return RankOf(role) >= roleRanks[models.RoleManager]
}

func CanDeleteUsers(role string) bool {
	return role == models.RoleOwner
}
