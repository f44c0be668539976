package models

import "time"

// Role groups permissions under a unique name. Permissions flow to a user
// either through their role or through direct assignment.
type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description *string      `gorm:"size:255" json:"description,omitempty"`
	Permissions []Permission `gorm:"many2many:roles_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission is a named capability such as "user:create".
type Permission struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description *string   `gorm:"size:255" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
