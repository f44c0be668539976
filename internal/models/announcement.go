package models

import (
	"time"

	"gorm.io/datatypes"
)

type AnnouncementType string

const (
	AnnouncementService AnnouncementType = "SERVICE"
	AnnouncementProduct AnnouncementType = "PRODUCT"
)

// Announcement is a service or product listing posted by a user, optionally
// scoped to a community.
type Announcement struct {
	ID          uint                         `gorm:"primaryKey" json:"id"`
	Title       string                       `gorm:"size:255;not null" json:"title"`
	Description string                       `gorm:"type:text;not null" json:"description"`
	Type        AnnouncementType             `gorm:"size:20;not null" json:"type"`
	IsPublished bool                         `gorm:"default:false" json:"is_published"`
	Images      datatypes.JSONSlice[string]  `json:"images,omitempty"`

	CategoryID  uint       `gorm:"not null" json:"-"`
	Category    Category   `gorm:"foreignKey:CategoryID" json:"category"`
	UserID      uint       `gorm:"not null;index" json:"-"`
	User        User       `gorm:"foreignKey:UserID" json:"user"`
	CommunityID *uint      `gorm:"index" json:"-"`
	Community   *Community `gorm:"foreignKey:CommunityID" json:"community,omitempty"`

	Ratings []Rating `gorm:"foreignKey:AnnouncementID" json:"ratings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
