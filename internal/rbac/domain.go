// Package rbac implements role based access control for the back office.
package rbac

import "errors"

// Role groups permissions under a named responsibility.
type Role struct {
	ID          int64
	Name        string
	Description string
	Permissions []string
}

// ErrRoleNotFound indicates a missing role.
var ErrRoleNotFound = errors.New("rbac: role not found")
