package dto

type CreateCommunityRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Logo        *string `json:"logo,omitempty"`
	CityID      *uint   `json:"city_id,omitempty"`
	CountryID   *uint   `json:"country_id,omitempty"`
}

type UpdateCommunityRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Logo        *string `json:"logo,omitempty"`
	CityID      *uint   `json:"city_id,omitempty"`
	CountryID   *uint   `json:"country_id,omitempty"`
}

type InviteCommunityRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type AcceptInvitationRequest struct {
	Token string `json:"token" validate:"required"`
}
