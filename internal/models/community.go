package models

import (
	"time"

	"gorm.io/gorm"
)

type CommunityStatus string

const (
	CommunityPending   CommunityStatus = "PENDING"
	CommunityValidated CommunityStatus = "VALIDATED"
	CommunityRejected  CommunityStatus = "REJECTED"
)

// Community is a local group announcements can be attached to. Created
// PENDING by any authenticated user, moved to VALIDATED or REJECTED by an
// administrator, soft deleted on removal.
type Community struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Slug        *string         `gorm:"size:255;uniqueIndex" json:"slug,omitempty"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Status      CommunityStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Logo        *string         `gorm:"size:512" json:"logo,omitempty"`

	CreatedByID uint   `gorm:"not null" json:"-"`
	CreatedBy   User   `gorm:"foreignKey:CreatedByID" json:"created_by"`
	Members     []User `gorm:"many2many:communities_members" json:"members,omitempty"`

	CityID    *uint    `json:"-"`
	City      *City    `gorm:"foreignKey:CityID" json:"city,omitempty"`
	CountryID *uint    `json:"-"`
	Country   *Country `gorm:"foreignKey:CountryID" json:"country,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationAccepted ApplicationStatus = "ACCEPTED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// CommunityApplication is a user's request to join a community. At most one
// row exists per (user, community) pair; ACCEPTED and REJECTED are terminal.
type CommunityApplication struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	UserID      uint              `gorm:"not null;index:idx_applications_user_community" json:"-"`
	User        User              `gorm:"foreignKey:UserID" json:"user"`
	CommunityID uint              `gorm:"not null;index:idx_applications_user_community" json:"-"`
	Community   Community         `gorm:"foreignKey:CommunityID" json:"community"`
	Status      ApplicationStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "PENDING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRejected InvitationStatus = "REJECTED"
	InvitationExpired  InvitationStatus = "EXPIRED"
)

// CommunityInvitation is an email invitation carrying a single-use token.
// Once status leaves PENDING it is terminal. Expiry is never swept in the
// background; it is observed lazily at acceptance time (EffectiveStatus).
type CommunityInvitation struct {
	ID     uint             `gorm:"primaryKey" json:"id"`
	Email  string           `gorm:"size:255;not null" json:"email"`
	Token  string           `gorm:"size:64;not null;uniqueIndex" json:"-"`
	Status InvitationStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`

	CommunityID uint      `gorm:"not null" json:"-"`
	Community   Community `gorm:"foreignKey:CommunityID" json:"community"`
	InvitedByID *uint     `json:"-"`
	InvitedBy   *User     `gorm:"foreignKey:InvitedByID" json:"invited_by,omitempty"`

	ExpiresAt time.Time      `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// EffectiveStatus returns the status the invitation should be treated as at
// the given instant, without mutating anything. Callers that observe EXPIRED
// on a PENDING row are responsible for persisting the transition.
func (i *CommunityInvitation) EffectiveStatus(now time.Time) InvitationStatus {
	if i.Status == InvitationPending && now.After(i.ExpiresAt) {
		return InvitationExpired
	}
	return i.Status
}
