package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vnkhanh/pathfinder-backend/models"
)

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole(models.RoleAdmin, models.RoleAdmin, models.RoleSuperuser))
	assert.True(t, HasRole(models.RoleSuperuser, models.RoleAdmin, models.RoleSuperuser))
	assert.False(t, HasRole(models.RolePathfinder, models.RoleAdmin, models.RoleSuperuser))
	assert.False(t, HasRole(models.RoleAdmin))
}

func TestCanDeleteUser(t *testing.T) {
	cases := []struct {
		actor, target models.Role
		want          bool
	}{
		{models.RoleAdmin, models.RolePathfinder, true},
		{models.RoleAdmin, models.RoleAdmin, false},
		{models.RoleAdmin, models.RoleSuperuser, false},
		{models.RoleSuperuser, models.RolePathfinder, true},
		{models.RoleSuperuser, models.RoleAdmin, true},
		{models.RoleSuperuser, models.RoleSuperuser, false},
		{models.RolePathfinder, models.RolePathfinder, false},
		{models.RolePathfinder, models.RoleAdmin, false},
		{models.Role("ghost"), models.RolePathfinder, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanDeleteUser(tc.actor, tc.target), "%s deleting %s", tc.actor, tc.target)
	}
}

func TestCanUpdateUser(t *testing.T) {
	assert.True(t, CanUpdateUser("a", "a", models.RolePathfinder))
	assert.False(t, CanUpdateUser("a", "b", models.RolePathfinder))
	assert.True(t, CanUpdateUser("a", "b", models.RoleAdmin))
	assert.True(t, CanUpdateUser("a", "b", models.RoleSuperuser))
}
