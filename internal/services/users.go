package services

import (
	"strings"

	"astro-admin-go/internal/models"
)

const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
)

// adminSlices are only offered to admins; editors manage content only.
var adminSlices = map[string]bool{
	SliceUsers: true,
}

func HasRole(user models.User, role string) bool {
	return strings.EqualFold(strings.TrimSpace(user.Role), role)
}

// CanManage reports whether user may read and write the named slice.
func CanManage(user models.User, slice string) bool {
	if HasRole(user, RoleAdmin) {
		return true
	}
	return !adminSlices[slice]
}
