package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/okaz-app/okaz-backend/internal/config"
	"github.com/okaz-app/okaz-backend/internal/database"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/okaz-app/okaz-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		JWTAccessExpiry:  15 * time.Minute,
		JWTRefreshExpiry: 168 * time.Hour,
	}
}

func newGuardedApp(cfg *config.Config, db *gorm.DB) *fiber.App {
	app := fiber.New()
	app.Get("/guarded",
		JWTProtected(cfg),
		LoadUser(db),
		RequirePermissions("user:create"),
		func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"user_id": CurrentUser(c).ID})
		})
	return app
}

func accessTokenFor(t *testing.T, cfg *config.Config, db *gorm.DB, user *models.User) string {
	t.Helper()
	auth := services.NewAuthService(db, cfg, nil)
	pair, err := auth.IssueTokenPair(user.ID, user.Email)
	require.NoError(t, err)
	return pair.AccessToken
}

func doGuarded(t *testing.T, app *fiber.App, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestGuardedRouteRequiresToken(t *testing.T) {
	cfg := testConfig()
	db := newTestDB(t)
	app := newGuardedApp(cfg, db)

	resp := doGuarded(t, app, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doGuarded(t, app, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGuardedRouteRejectsUnknownSubject(t *testing.T) {
	cfg := testConfig()
	db := newTestDB(t)
	app := newGuardedApp(cfg, db)

	ghost := &models.User{ID: 4242, Email: "ghost@example.com"}
	resp := doGuarded(t, app, accessTokenFor(t, cfg, db, ghost))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestGuardedRoutePermissionGrants(t *testing.T) {
	cfg := testConfig()
	db := newTestDB(t)
	app := newGuardedApp(cfg, db)

	user := models.User{FullName: "Test User", Email: "user@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)
	token := accessTokenFor(t, cfg, db, &user)

	// Authenticated but not authorized.
	resp := doGuarded(t, app, token)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// A direct permission grant flips the answer without reissuing the token.
	perm := models.Permission{Name: "user:create"}
	require.NoError(t, db.Create(&perm).Error)
	require.NoError(t, db.Model(&user).Association("Permissions").Append(&perm))

	resp = doGuarded(t, app, token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGuardedRoutePermissionViaRole(t *testing.T) {
	cfg := testConfig()
	db := newTestDB(t)
	app := newGuardedApp(cfg, db)

	perm := models.Permission{Name: "user:create"}
	require.NoError(t, db.Create(&perm).Error)
	role := models.Role{Name: "admin", Permissions: []models.Permission{perm}}
	require.NoError(t, db.Create(&role).Error)
	user := models.User{FullName: "Admin", Email: "admin@example.com", Password: "x", IsActive: true, RoleID: &role.ID}
	require.NoError(t, db.Create(&user).Error)

	resp := doGuarded(t, app, accessTokenFor(t, cfg, db, &user))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
