package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/okaz-app/okaz-backend/internal/services"
	"gorm.io/gorm"
)

const currentUserKey = "current_user"

// LoadUser resolves the authenticated user with role and permissions and
// stores it in locals. Runs behind JWTProtected; a token whose subject no
// longer exists is treated as unauthenticated.
func LoadUser(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := UserID(c)
		if id == 0 {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		var user models.User
		err := db.
			Preload("Role.Permissions").
			Preload("Permissions").
			First(&user, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
			}
			return err
		}
		c.Locals(currentUserKey, &user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by LoadUser, or nil outside a guarded
// route.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(currentUserKey).(*models.User)
	return user
}

// RequirePermissions rejects the request with 403 unless the authenticated
// user holds every listed permission, through their role or directly.
// Missing authentication stays a 401, never a 403.
func RequirePermissions(perms ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}
		if !services.Authorize(user, perms) {
			return fiber.NewError(fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}
