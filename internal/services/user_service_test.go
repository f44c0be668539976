package services

import (
	"testing"
	"time"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func latestOTP(t *testing.T, svc *UserService, email string) *models.UserOTP {
	t.Helper()
	var otp models.UserOTP
	require.NoError(t, svc.db.
		Where("email = ? AND used = ?", email, false).
		Order("created_at DESC").First(&otp).Error)
	return &otp
}

func TestOTPActivationFlow(t *testing.T) {
	svc := newTestUserService(newTestDB(t))

	user, err := svc.CreateFromRegistration(&dto.RegisterRequest{
		Email:    "otp@example.com",
		Password: "password123",
		FullName: "OTP User",
	})
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	otp := latestOTP(t, svc, user.Email)
	assert.Len(t, otp.Code, 6)

	require.NoError(t, svc.ValidateOTP(user.Email, otp.Code))

	activated, err := svc.FindByEmail(user.Email)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)

	// Single use: the same code never validates twice.
	assert.ErrorIs(t, svc.ValidateOTP(user.Email, otp.Code), ErrOTPInvalid)
}

func TestOTPExpiredCodeRejected(t *testing.T) {
	svc := newTestUserService(newTestDB(t))

	user, err := svc.CreateFromRegistration(&dto.RegisterRequest{
		Email:    "expired@example.com",
		Password: "password123",
		FullName: "Expired",
	})
	require.NoError(t, err)

	otp := latestOTP(t, svc, user.Email)
	require.NoError(t, svc.db.Model(otp).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	assert.ErrorIs(t, svc.ValidateOTP(user.Email, otp.Code), ErrOTPInvalid)

	still, err := svc.FindByEmail(user.Email)
	require.NoError(t, err)
	assert.False(t, still.IsActive)
}

func TestOTPWrongCodeRejected(t *testing.T) {
	svc := newTestUserService(newTestDB(t))

	user, err := svc.CreateFromRegistration(&dto.RegisterRequest{
		Email:    "wrongcode@example.com",
		Password: "password123",
		FullName: "Wrong",
	})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ValidateOTP(user.Email, "000000x"), ErrOTPInvalid)
}

func TestResendOTPInvalidatesPreviousCode(t *testing.T) {
	svc := newTestUserService(newTestDB(t))

	user, err := svc.CreateFromRegistration(&dto.RegisterRequest{
		Email:    "resend@example.com",
		Password: "password123",
		FullName: "Resend",
	})
	require.NoError(t, err)
	first := latestOTP(t, svc, user.Email)

	require.NoError(t, svc.ResendOTP(user.Email))
	second := latestOTP(t, svc, user.Email)
	assert.NotEqual(t, first.ID, second.ID)

	assert.ErrorIs(t, svc.ValidateOTP(user.Email, first.Code), ErrOTPInvalid)
	require.NoError(t, svc.ValidateOTP(user.Email, second.Code))

	assert.ErrorIs(t, svc.ResendOTP("unknown@example.com"), ErrUserNotFound)
}

func TestCreateFromRegistrationRejectsDuplicateEmail(t *testing.T) {
	svc := newTestUserService(newTestDB(t))

	_, err := svc.CreateFromRegistration(&dto.RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
		FullName: "First",
	})
	require.NoError(t, err)

	_, err = svc.CreateFromRegistration(&dto.RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
		FullName: "Second",
	})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestAdminCreateIsActiveImmediately(t *testing.T) {
	svc := newTestUserService(newTestDB(t))

	user, err := svc.AdminCreate(&dto.AdminCreateUserRequest{
		Email:    "admin-created@example.com",
		Password: "password123",
		FullName: "Admin Created",
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	var otps int64
	svc.db.Model(&models.UserOTP{}).Where("email = ?", user.Email).Count(&otps)
	assert.Zero(t, otps)

	// An unknown role id is rejected before the insert.
	badRole := uint(9999)
	_, err = svc.AdminCreate(&dto.AdminCreateUserRequest{
		Email:    "bad-role@example.com",
		Password: "password123",
		FullName: "Bad Role",
		RoleID:   &badRole,
	})
	assert.ErrorIs(t, err, ErrRoleNotFound)

	role := models.Role{Name: "staff"}
	require.NoError(t, svc.db.Create(&role).Error)
	withRole, err := svc.AdminCreate(&dto.AdminCreateUserRequest{
		Email:    "staffer@example.com",
		Password: "password123",
		FullName: "Staffer",
		RoleID:   &role.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, withRole.RoleID)
	assert.Equal(t, role.ID, *withRole.RoleID)
}

func TestAssignRoleAndDirectPermissions(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	user := seedUser(t, db, "perms@example.com", "password123")

	read := seedPermission(t, db, "user:read")
	create := seedPermission(t, db, "user:create")
	role := models.Role{Name: "support", Permissions: []models.Permission{*read}}
	require.NoError(t, db.Create(&role).Error)

	withRole, err := svc.AssignRole(user.ID, role.ID)
	require.NoError(t, err)
	require.NotNil(t, withRole.Role)
	assert.True(t, Authorize(withRole, []string{"user:read"}))
	assert.False(t, Authorize(withRole, []string{"user:create"}))

	withDirect, err := svc.SetPermissions(user.ID, []uint{create.ID})
	require.NoError(t, err)
	assert.True(t, Authorize(withDirect, []string{"user:read", "user:create"}))

	// Replacing with an empty set drops direct grants, role grants remain.
	cleared, err := svc.SetPermissions(user.ID, nil)
	require.NoError(t, err)
	assert.True(t, Authorize(cleared, []string{"user:read"}))
	assert.False(t, Authorize(cleared, []string{"user:create"}))

	_, err = svc.SetPermissions(user.ID, []uint{9999})
	assert.ErrorIs(t, err, ErrPermissionNotFound)
	_, err = svc.AssignRole(user.ID, 9999)
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestListPaginatedClampsLimit(t *testing.T) {
	db := newTestDB(t)
	svc := newTestUserService(db)
	for i := 0; i < 12; i++ {
		seedUser(t, db, string(rune('a'+i))+"@example.com", "password123")
	}

	page, err := svc.ListPaginated(1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Items, 10)
	assert.EqualValues(t, 12, page.Meta.TotalItems)
	assert.Equal(t, 2, page.Meta.TotalPages)

	rest, err := svc.ListPaginated(2, 10)
	require.NoError(t, err)
	assert.Len(t, rest.Items, 2)

	// Oversized limits clamp to the ceiling, and the meta reports the
	// clamped value, not the raw query input.
	clamped, err := svc.ListPaginated(1, 5000)
	require.NoError(t, err)
	assert.Len(t, clamped.Items, 12)
	assert.Equal(t, maxPageLimit, clamped.Meta.ItemsPerPage)

	// A zero limit falls back to the default instead of dividing by zero.
	zero, err := svc.ListPaginated(1, 0)
	require.NoError(t, err)
	assert.Len(t, zero.Items, 10)
	assert.Equal(t, defaultPageLimit, zero.Meta.ItemsPerPage)
	assert.Equal(t, 2, zero.Meta.TotalPages)
}
