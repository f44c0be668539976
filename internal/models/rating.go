package models

import "time"

// Rating is a 1-5 note left by one user for another in the context of an
// announcement, with an optional comment.
type Rating struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	Note    int     `gorm:"not null" json:"note"`
	Comment *string `gorm:"type:text" json:"comment,omitempty"`

	SenderID       uint         `gorm:"not null;index" json:"-"`
	Sender         User         `gorm:"foreignKey:SenderID" json:"sender"`
	ReceiverID     uint         `gorm:"not null;index" json:"-"`
	Receiver       User         `gorm:"foreignKey:ReceiverID" json:"receiver"`
	AnnouncementID uint         `gorm:"not null;index" json:"-"`
	Announcement   Announcement `gorm:"foreignKey:AnnouncementID" json:"announcement"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
