package models

import "time"

type ReportTargetType string

const (
	ReportTargetUser         ReportTargetType = "USER"
	ReportTargetAnnouncement ReportTargetType = "ANNOUNCEMENT"
)

// Report is an abuse signal against a user or an announcement.
type Report struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	TargetType ReportTargetType `gorm:"size:20;not null" json:"target_type"`

	TargetUserID         *uint         `gorm:"index" json:"-"`
	TargetUser           *User         `gorm:"foreignKey:TargetUserID" json:"target_user,omitempty"`
	TargetAnnouncementID *uint         `gorm:"index" json:"-"`
	TargetAnnouncement   *Announcement `gorm:"foreignKey:TargetAnnouncementID" json:"target_announcement,omitempty"`

	AuthorID uint `gorm:"not null;index" json:"-"`
	Author   User `gorm:"foreignKey:AuthorID" json:"author"`

	Reason      string  `gorm:"size:255;not null" json:"reason"`
	Description *string `gorm:"type:text" json:"description,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
