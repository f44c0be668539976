package services

import "errors"

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrOTPInvalid         = errors.New("invalid or expired code")

	ErrRoleNotFound       = errors.New("role not found")
	ErrPermissionNotFound = errors.New("permission not found")
	ErrRoleNameTaken      = errors.New("role name already exists")
	ErrPermissionTaken    = errors.New("permission name already exists")

	ErrCommunityNotFound    = errors.New("community not found")
	ErrAlreadyMember        = errors.New("user is already a member of this community")
	ErrApplicationExists    = errors.New("an application for this community already exists")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrApplicationResolved  = errors.New("application already resolved")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationNotPending = errors.New("invitation already used or expired")
	ErrInvitationExpired    = errors.New("invitation expired")

	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrRatingNotFound       = errors.New("rating not found")
	ErrReportNotFound       = errors.New("report not found")
	ErrCountryNotFound      = errors.New("country not found")
	ErrCityNotFound         = errors.New("city not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrReportTargetMissing  = errors.New("report target is required")
)
