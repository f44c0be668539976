package dto

import "time"

type CreateAnnouncementRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Type        string   `json:"type" validate:"required,oneof=SERVICE PRODUCT"`
	CategoryID  uint     `json:"category_id" validate:"required"`
	CommunityID *uint    `json:"community_id,omitempty"`
	Images      []string `json:"images,omitempty"`
}

type UpdateAnnouncementRequest struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Type        *string   `json:"type,omitempty" validate:"omitempty,oneof=SERVICE PRODUCT"`
	CategoryID  *uint     `json:"category_id,omitempty"`
	CommunityID *uint     `json:"community_id,omitempty"`
	Images      *[]string `json:"images,omitempty"`
}

// SearchAnnouncementsQuery is the multi-criteria filter for announcement
// search. Zero values mean "no filter".
type SearchAnnouncementsQuery struct {
	Keyword      string     `query:"keyword"`
	Type         string     `query:"type"`
	CategoryID   uint       `query:"category_id"`
	IsPublished  *bool      `query:"is_published"`
	UserID       uint       `query:"user_id"`
	CommunityID  uint       `query:"community_id"`
	CreatedAtMin *time.Time `query:"created_at_min"`
	CreatedAtMax *time.Time `query:"created_at_max"`
	Page         int        `query:"page"`
	Limit        int        `query:"limit"`
}
