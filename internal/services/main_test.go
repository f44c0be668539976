package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/okaz-app/okaz-backend/internal/config"
	"github.com/okaz-app/okaz-backend/internal/database"
	"github.com/okaz-app/okaz-backend/internal/mail"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
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
		OTPExpiry:        10 * time.Minute,
		InvitationTTL:    72 * time.Hour,
	}
}

func seedUser(t *testing.T, db *gorm.DB, email, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	require.NoError(t, err)
	user := models.User{
		FullName: "Test User",
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func seedPermission(t *testing.T, db *gorm.DB, name string) *models.Permission {
	t.Helper()
	perm := models.Permission{Name: name}
	require.NoError(t, db.Create(&perm).Error)
	return &perm
}

func newTestUserService(db *gorm.DB) *UserService {
	return NewUserService(db, testConfig(), mail.Noop{})
}
