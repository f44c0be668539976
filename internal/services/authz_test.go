package services

import (
	"testing"

	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePermissionsUnion(t *testing.T) {
	user := &models.User{
		Role: &models.Role{
			Name: "moderator",
			Permissions: []models.Permission{
				{Name: "report:manage"},
				{Name: "user:read"},
			},
		},
		Permissions: []models.Permission{
			{Name: "user:read"},
			{Name: "community:validate"},
		},
	}

	got := EffectivePermissions(user)
	assert.Len(t, got, 3)
	assert.Contains(t, got, "report:manage")
	assert.Contains(t, got, "user:read")
	assert.Contains(t, got, "community:validate")
}

func TestEffectivePermissionsNilUser(t *testing.T) {
	assert.Empty(t, EffectivePermissions(nil))
}

func TestEffectivePermissionsNoRole(t *testing.T) {
	user := &models.User{
		Permissions: []models.Permission{{Name: "user:read"}},
	}
	got := EffectivePermissions(user)
	assert.Len(t, got, 1)
	assert.Contains(t, got, "user:read")
}

func TestAuthorize(t *testing.T) {
	user := &models.User{
		Role:        &models.Role{Permissions: []models.Permission{{Name: "user:read"}}},
		Permissions: []models.Permission{{Name: "user:create"}},
	}

	assert.True(t, Authorize(user, nil))
	assert.True(t, Authorize(user, []string{"user:read"}))
	assert.True(t, Authorize(user, []string{"user:create"}))
	assert.True(t, Authorize(user, []string{"user:read", "user:create"}))
	assert.False(t, Authorize(user, []string{"user:read", "user:delete"}))
	assert.False(t, Authorize(nil, []string{"user:read"}))
	assert.True(t, Authorize(nil, nil))
}
