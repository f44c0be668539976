package models

import "time"

type MessageStatus string

const (
	MessageSent      MessageStatus = "SENT"
	MessageDelivered MessageStatus = "DELIVERED"
	MessageRead      MessageStatus = "READ"
)

// Message is a private message between two users, optionally tied to an
// announcement.
type Message struct {
	ID      uint          `gorm:"primaryKey" json:"id"`
	Content string        `gorm:"type:text;not null" json:"content"`
	Status  MessageStatus `gorm:"size:20;not null;default:'SENT'" json:"status"`

	SenderID       uint          `gorm:"not null;index" json:"sender_id"`
	Sender         User          `gorm:"foreignKey:SenderID" json:"sender"`
	ReceiverID     uint          `gorm:"not null;index" json:"receiver_id"`
	Receiver       User          `gorm:"foreignKey:ReceiverID" json:"receiver"`
	AnnouncementID *uint         `gorm:"index" json:"announcement_id,omitempty"`
	Announcement   *Announcement `gorm:"foreignKey:AnnouncementID" json:"announcement,omitempty"`

	Attachments []Attachment `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Attachment is a file reference carried by a message.
type Attachment struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	URL       string  `gorm:"size:512;not null" json:"url"`
	Type      *string `gorm:"size:100" json:"type,omitempty"`
	MessageID uint    `gorm:"not null;index" json:"-"`
}
