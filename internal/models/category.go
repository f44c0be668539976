package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Category groups announcements by theme. The slug is derived from the name
// on every save so URLs stay consistent after renames.
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Slug        string    `gorm:"size:255;uniqueIndex" json:"slug"`
	Description *string   `gorm:"size:512" json:"description,omitempty"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify lowercases the name, replaces whitespace runs with hyphens and
// strips everything outside [a-z0-9-].
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return s
}

func (c *Category) BeforeSave(tx *gorm.DB) error {
	if c.Name != "" {
		c.Slug = Slugify(c.Name)
	}
	return nil
}
