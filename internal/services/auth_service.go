package services

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/okaz-app/okaz-backend/internal/config"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// bcrypt work factor for passwords and the refresh-token-at-rest hash.
const hashCost = 10

// AuthService issues, validates and rotates the token pair. The refresh
// token is a JWT signed with its own secret; its bcrypt hash is the single
// piece of server-side session state, stored on the user row. At most one
// refresh token per user is valid at any time.
type AuthService struct {
	db    *gorm.DB
	cfg   *config.Config
	users *UserService
}

func NewAuthService(db *gorm.DB, cfg *config.Config, users *UserService) *AuthService {
	return &AuthService{db: db, cfg: cfg, users: users}
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// IssueTokenPair signs the access and refresh tokens concurrently; the two
// operations are independent and use distinct secrets.
func (s *AuthService) IssueTokenPair(userID uint, email string) (*TokenPair, error) {
	var pair TokenPair
	var g errgroup.Group

	g.Go(func() error {
		token, err := signToken(userID, email, s.cfg.JWTAccessSecret, s.cfg.JWTAccessExpiry)
		if err != nil {
			return fmt.Errorf("sign access token: %w", err)
		}
		pair.AccessToken = token
		return nil
	})
	g.Go(func() error {
		token, err := signToken(userID, email, s.cfg.JWTRefreshSecret, s.cfg.JWTRefreshExpiry)
		if err != nil {
			return fmt.Errorf("sign refresh token: %w", err)
		}
		pair.RefreshToken = token
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &pair, nil
}

func signToken(userID uint, email, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatUint(uint64(userID), 10),
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// hashRefreshToken bcrypts a sha256 digest of the token; bcrypt rejects
// inputs over 72 bytes and signed JWTs are longer than that.
func hashRefreshToken(token string) (string, error) {
	digest := sha256.Sum256([]byte(token))
	hash, err := bcrypt.GenerateFromPassword(digest[:], hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func refreshTokenMatches(hash, token string) bool {
	digest := sha256.Sum256([]byte(token))
	return bcrypt.CompareHashAndPassword([]byte(hash), digest[:]) == nil
}

// PersistRefreshToken stores the hash of the given refresh token on the user
// row, replacing whatever was there. An empty token revokes the session.
func (s *AuthService) PersistRefreshToken(userID uint, refreshToken string) error {
	var value interface{}
	if refreshToken != "" {
		hash, err := hashRefreshToken(refreshToken)
		if err != nil {
			return err
		}
		value = hash
	}
	return s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("hashed_refresh_token", value).Error
}

// ValidateRefreshToken checks the presented token against the stored hash
// and returns the fully hydrated user (role, role permissions and direct
// permissions preloaded). Only the current hash is valid: rotation
// invalidates every previously issued refresh token.
func (s *AuthService) ValidateRefreshToken(userID uint, presented string) (*models.User, error) {
	var user models.User
	err := s.db.Preload("Role.Permissions").Preload("Permissions").
		First(&user, "id = ?", userID).Error
	if err != nil {
		return nil, ErrInvalidToken
	}
	if user.HashedRefreshToken == nil {
		return nil, ErrInvalidToken
	}
	if !refreshTokenMatches(*user.HashedRefreshToken, presented) {
		return nil, ErrInvalidToken
	}
	return &user, nil
}

// ParseRefreshToken verifies the signature and expiry of a refresh token and
// extracts its subject. Any failure collapses to ErrInvalidToken so the
// transport layer leaks nothing about which check failed.
func (s *AuthService) ParseRefreshToken(tokenString string) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTRefreshSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidToken
	}
	return uint(id), email, nil
}

// Register creates an inactive account, mails the activation OTP and opens a
// session.
func (s *AuthService) Register(req *dto.RegisterRequest) (*models.User, *TokenPair, error) {
	user, err := s.users.CreateFromRegistration(req)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.openSession(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Login verifies credentials and opens a session, rotating any previously
// stored refresh token.
func (s *AuthService) Login(req *dto.LoginRequest) (*models.User, *TokenPair, error) {
	var user models.User
	if err := s.db.Preload("Role.Permissions").Preload("Permissions").
		Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}
	pair, err := s.openSession(&user)
	if err != nil {
		return nil, nil, err
	}
	return &user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The old token is
// unusable afterwards.
func (s *AuthService) Refresh(userID uint, presented string) (*models.User, *TokenPair, error) {
	user, err := s.ValidateRefreshToken(userID, presented)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.openSession(user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *AuthService) openSession(user *models.User) (*TokenPair, error) {
	pair, err := s.IssueTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.PersistRefreshToken(user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the stored refresh token.
func (s *AuthService) Logout(userID uint) error {
	return s.PersistRefreshToken(userID, "")
}

// ChangePassword verifies the old password, stores the new hash and revokes
// the refresh token so every session has to reauthenticate.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), hashCost)
	if err != nil {
		return err
	}
	return s.db.Model(&user).Updates(map[string]interface{}{
		"password":             string(hash),
		"hashed_refresh_token": nil,
	}).Error
}
