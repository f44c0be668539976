package services

import (
	"github.com/okaz-app/okaz-backend/internal/models"
)

// EffectivePermissions returns the deduplicated union of the user's
// role-level and directly assigned permission names. There is no precedence
// between the two paths; presence via either grants access.
func EffectivePermissions(user *models.User) map[string]struct{} {
	set := make(map[string]struct{})
	if user == nil {
		return set
	}
	if user.Role != nil {
		for _, p := range user.Role.Permissions {
			set[p.Name] = struct{}{}
		}
	}
	for _, p := range user.Permissions {
		set[p.Name] = struct{}{}
	}
	return set
}

// Authorize reports whether the user holds every required permission. An
// empty requirement always passes; whether anonymous access is allowed at all
// is the route's separate authentication concern.
func Authorize(user *models.User, required []string) bool {
	if len(required) == 0 {
		return true
	}
	effective := EffectivePermissions(user)
	for _, name := range required {
		if _, ok := effective[name]; !ok {
			return false
		}
	}
	return true
}
