package models

// Permission is a single named capability checked through rbac.Policy.
type Permission string

const (
	PermAccessAdmin        Permission = "access_admin"
	PermManageApplications Permission = "manage_applications"
	PermManageUsers        Permission = "manage_users"
	PermManageRoles        Permission = "manage_roles"
	PermManageSettings     Permission = "manage_settings"
	PermManageForms        Permission = "manage_forms"
	PermManageServer       Permission = "manage_server"
	PermDeleteUsers        Permission = "delete_users"
)

// Builtin role identifiers. Custom roles carry their own ids.
const (
	RoleOwner   = "owner"
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
	RoleBuilder = "builder"
	RoleUser    = "user"
)

// Role is a named permission bundle. Builtin roles are fixed; custom
// roles are created by role managers and live in the settings document.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Color       string       `json:"color,omitempty"`
	Icon        string       `json:"icon,omitempty"`
	Permissions []Permission `json:"permissions"`
	IsCustom    bool         `json:"is_custom"`
}
