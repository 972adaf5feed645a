package services

import "github.com/vnkhanh/pathfinder-backend/models"

// HasRole reports whether role is one of allowed.
func HasRole(role models.Role, allowed ...models.Role) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

// CanDeleteUser: admin chỉ xoá được pathfinder, superuser xoá được mọi
// người trừ superuser khác.
func CanDeleteUser(actor, target models.Role) bool {
	switch actor {
	case models.RoleAdmin:
		return target == models.RolePathfinder
	case models.RoleSuperuser:
		return target != models.RoleSuperuser
	}
	return false
}

// CanUpdateUser: chính chủ hoặc admin/superuser.
func CanUpdateUser(actorID, targetID string, actorRole models.Role) bool {
	return actorID == targetID || HasRole(actorRole, models.RoleAdmin, models.RoleSuperuser)
}
