package model

import (
	"errors"
	"fmt"
)

// ErrForbidden is matched by every PermissionError.
var ErrForbidden = errors.New("permission denied")

// Permission names a single capability a user may hold.
type Permission string

const (
	PermAdd              Permission = "add"
	PermEdit             Permission = "edit"
	PermDelete           Permission = "delete"
	PermChangeStatus     Permission = "changeStatus"
	PermManageCategories Permission = "manageCategories"
	PermManageUsers      Permission = "manageUsers"
)

// AllPermissions lists every permission in display order.
var AllPermissions = []Permission{
	PermAdd, PermEdit, PermDelete, PermChangeStatus, PermManageCategories, PermManageUsers,
}

// Permissions is the fixed permission set of a user.
type Permissions struct {
	Add              bool `json:"add" yaml:"add"`
	Edit             bool `json:"edit" yaml:"edit"`
	Delete           bool `json:"delete" yaml:"delete"`
	ChangeStatus     bool `json:"changeStatus" yaml:"change_status"`
	ManageCategories bool `json:"manageCategories" yaml:"manage_categories"`
	ManageUsers      bool `json:"manageUsers" yaml:"manage_users"`
}

// FullPermissions grants everything.
func FullPermissions() Permissions {
	return Permissions{Add: true, Edit: true, Delete: true, ChangeStatus: true, ManageCategories: true, ManageUsers: true}
}

// Allows reports whether perm is granted.
func (p Permissions) Allows(perm Permission) bool {
	switch perm {
	case PermAdd:
		return p.Add
	case PermEdit:
		return p.Edit
	case PermDelete:
		return p.Delete
	case PermChangeStatus:
		return p.ChangeStatus
	case PermManageCategories:
		return p.ManageCategories
	case PermManageUsers:
		return p.ManageUsers
	}
	return false
}

// Set grants or revokes perm. Unknown permissions return an error.
func (p *Permissions) Set(perm Permission, on bool) error {
	switch perm {
	case PermAdd:
		p.Add = on
	case PermEdit:
		p.Edit = on
	case PermDelete:
		p.Delete = on
	case PermChangeStatus:
		p.ChangeStatus = on
	case PermManageCategories:
		p.ManageCategories = on
	case PermManageUsers:
		p.ManageUsers = on
	default:
		return fmt.Errorf("unknown permission %q", perm)
	}
	return nil
}

// User is a local account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string      `json:"id" yaml:"id"`
	Username     string      `json:"username" yaml:"username"`
	PasswordHash string      `json:"-" yaml:"password_hash"`
	Permissions  Permissions `json:"permissions" yaml:"permissions"`
}

// PermissionError reports a refused operation.
type PermissionError struct {
	Username   string
	Permission Permission
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %q lacks the %s permission", e.Username, e.Permission)
}

// Is makes errors.Is(err, ErrForbidden) hold.
func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

// Require returns a *PermissionError unless u holds perm.
func Require(u User, perm Permission) error {
	if u.Permissions.Allows(perm) {
		return nil
	}
	return &PermissionError{Username: u.Username, Permission: perm}
}
