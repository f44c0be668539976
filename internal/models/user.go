package models

import (
	"time"
)

// User is a marketplace account. A user carries at most one Role plus an
// optional set of directly assigned permissions; the effective permission set
// is the union of both (see services.EffectivePermissions).
//
// HashedRefreshToken holds the bcrypt hash of the single currently valid
// refresh token. Nil means no active session.
type User struct {
	ID                 uint    `gorm:"primaryKey" json:"id"`
	FullName           string  `gorm:"size:255;not null" json:"full_name"`
	Email              string  `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password           string  `gorm:"not null" json:"-"`
	Description        *string `gorm:"type:text" json:"description,omitempty"`
	HashedRefreshToken *string `json:"-"`
	FCMToken           *string `gorm:"size:255" json:"-"`

	// IsActive flips to true once the registration OTP is validated.
	IsActive  bool `gorm:"default:false" json:"is_active"`
	IsVisible bool `gorm:"default:true" json:"is_visible"`

	RoleID      *uint        `json:"-"`
	Role        *Role        `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Permissions []Permission `gorm:"many2many:users_permissions" json:"permissions,omitempty"`

	CityID *uint `json:"-"`
	City   *City `gorm:"foreignKey:CityID" json:"city,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserOTP is a one-time numeric code mailed during registration. Codes expire
// ten minutes after issuance and are single-use.
type UserOTP struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;index" json:"email"`
	Code      string    `gorm:"size:10;not null" json:"-"`
	Used      bool      `gorm:"default:false" json:"used"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserOTP) TableName() string {
	return "user_otps"
}
