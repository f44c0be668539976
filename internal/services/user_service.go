package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/okaz-app/okaz-backend/internal/config"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/mail"
	"github.com/okaz-app/okaz-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService manages accounts, OTP activation and role/permission
// assignment.
type UserService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer mail.Mailer
}

func NewUserService(db *gorm.DB, cfg *config.Config, mailer mail.Mailer) *UserService {
	return &UserService{db: db, cfg: cfg, mailer: mailer}
}

func (s *UserService) FindByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Role.Permissions").Preload("Permissions").Preload("City.Country").
		First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Role.Permissions").Preload("Permissions").
		Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateFromRegistration creates an inactive account and mails the
// activation OTP. The account stays unusable for permission-gated routes
// until the OTP is validated.
func (s *UserService) CreateFromRegistration(req *dto.RegisterRequest) (*models.User, error) {
	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:       req.Email,
		Password:    string(hash),
		FullName:    req.FullName,
		Description: req.Description,
		CityID:      req.CityID,
		IsActive:    false,
		IsVisible:   true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	code, err := s.issueOTP(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.mailer.SendOTP(context.Background(), user.Email, code); err != nil {
		slog.Error("otp mail failed", "error", err, "email", user.Email)
	}
	return &user, nil
}

// AdminCreate creates an account that is active immediately, skipping OTP.
func (s *UserService) AdminCreate(req *dto.AdminCreateUserRequest) (*models.User, error) {
	var existing models.User
	if err := s.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}
	if req.RoleID != nil {
		var role models.Role
		if err := s.db.First(&role, "id = ?", *req.RoleID).Error; err != nil {
			return nil, ErrRoleNotFound
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:    req.Email,
		Password: string(hash),
		FullName: req.FullName,
		RoleID:   req.RoleID,
		IsActive: true,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *UserService) UpdateProfile(id uint, req *dto.UpdateProfileRequest) (*models.User, error) {
	user, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.CityID != nil {
		updates["city_id"] = *req.CityID
	}
	if req.IsVisible != nil {
		updates["is_visible"] = *req.IsVisible
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.FindByID(id)
}

func (s *UserService) AdminUpdate(id uint, req *dto.AdminUpdateUserRequest) (*models.User, error) {
	user, err := s.FindByID(id)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.RoleID != nil {
		updates["role_id"] = *req.RoleID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.IsVisible != nil {
		updates["is_visible"] = *req.IsVisible
	}
	if len(updates) == 0 {
		return user, nil
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.FindByID(id)
}

// ListPaginated returns one page of users with the listing defaults and the
// limit ceiling applied; the page meta reflects the normalized values, not
// the raw query input.
func (s *UserService) ListPaginated(page, limit int) (dto.Page[models.User], error) {
	page, limit = normalizePaging(page, limit)

	var total int64
	if err := s.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return dto.Page[models.User]{}, err
	}
	var users []models.User
	err := s.db.Preload("Role").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return dto.Page[models.User]{}, err
	}
	return dto.NewPage(users, total, page, limit), nil
}

func (s *UserService) AssignRole(userID, roleID uint) (*models.User, error) {
	if _, err := s.FindByID(userID); err != nil {
		return nil, err
	}
	var role models.Role
	if err := s.db.First(&role, "id = ?", roleID).Error; err != nil {
		return nil, ErrRoleNotFound
	}
	if err := s.db.Model(&models.User{ID: userID}).Update("role_id", roleID).Error; err != nil {
		return nil, err
	}
	return s.FindByID(userID)
}

// SetPermissions replaces the user's direct permission set.
func (s *UserService) SetPermissions(userID uint, permissionIDs []uint) (*models.User, error) {
	user, err := s.FindByID(userID)
	if err != nil {
		return nil, err
	}
	var perms []models.Permission
	if len(permissionIDs) > 0 {
		if err := s.db.Find(&perms, "id IN ?", permissionIDs).Error; err != nil {
			return nil, err
		}
		if len(perms) != len(permissionIDs) {
			return nil, ErrPermissionNotFound
		}
	}
	if err := s.db.Model(user).Association("Permissions").Replace(perms); err != nil {
		return nil, err
	}
	return s.FindByID(userID)
}

func (s *UserService) SetDeviceToken(userID uint, token string) error {
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("fcm_token", token).Error
}

// issueOTP invalidates previous codes for the email and persists a fresh
// 6-digit code with the configured expiry.
func (s *UserService) issueOTP(email string) (string, error) {
	code, err := randomOTP()
	if err != nil {
		return "", err
	}
	if err := s.db.Model(&models.UserOTP{}).Where("email = ? AND used = ?", email, false).
		Update("used", true).Error; err != nil {
		return "", err
	}
	otp := models.UserOTP{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(s.cfg.OTPExpiry),
	}
	if err := s.db.Create(&otp).Error; err != nil {
		return "", err
	}
	return code, nil
}

func randomOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// ValidateOTP checks the code for the email inside its validity window,
// marks it used and activates the account.
func (s *UserService) ValidateOTP(email, code string) error {
	var otp models.UserOTP
	err := s.db.Where("email = ? AND code = ? AND used = ?", email, code, false).
		Order("created_at DESC").First(&otp).Error
	if err != nil {
		return ErrOTPInvalid
	}
	if time.Now().After(otp.ExpiresAt) {
		return ErrOTPInvalid
	}
	if err := s.db.Model(&otp).Update("used", true).Error; err != nil {
		return err
	}
	return s.db.Model(&models.User{}).Where("email = ?", email).
		Update("is_active", true).Error
}

// ResendOTP issues a replacement code for an account that has not activated
// yet.
func (s *UserService) ResendOTP(email string) error {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return ErrUserNotFound
	}
	code, err := s.issueOTP(email)
	if err != nil {
		return err
	}
	if err := s.mailer.SendResendOTP(context.Background(), email, code); err != nil {
		slog.Error("otp resend mail failed", "error", err, "email", email)
	}
	return nil
}
