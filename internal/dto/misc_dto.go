package dto

type CreateCategoryRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type CreateRatingRequest struct {
	Note           int     `json:"note" validate:"required,min=1,max=5"`
	Comment        *string `json:"comment,omitempty"`
	ReceiverID     uint    `json:"receiver_id" validate:"required"`
	AnnouncementID uint    `json:"announcement_id" validate:"required"`
}

type CreateReportRequest struct {
	TargetType           string  `json:"target_type" validate:"required,oneof=USER ANNOUNCEMENT"`
	TargetUserID         *uint   `json:"target_user_id,omitempty"`
	TargetAnnouncementID *uint   `json:"target_announcement_id,omitempty"`
	Reason               string  `json:"reason" validate:"required"`
	Description          *string `json:"description,omitempty"`
}

type CreateCountryRequest struct {
	Name string `json:"name" validate:"required"`
}

type UpdateCountryRequest struct {
	Name string `json:"name" validate:"required"`
}

type CreateCityRequest struct {
	Name      string `json:"name" validate:"required"`
	CountryID uint   `json:"country_id" validate:"required"`
}

type UpdateCityRequest struct {
	Name      *string `json:"name,omitempty"`
	CountryID *uint   `json:"country_id,omitempty"`
}

type SendMessageRequest struct {
	Content        string   `json:"content" validate:"required"`
	ReceiverID     uint     `json:"receiver_id" validate:"required"`
	AnnouncementID *uint    `json:"announcement_id,omitempty"`
	Attachments    []string `json:"attachments,omitempty"`
}
