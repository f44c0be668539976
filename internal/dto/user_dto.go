package dto

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name,omitempty"`
	Description *string `json:"description,omitempty"`
	CityID      *uint   `json:"city_id,omitempty"`
	IsVisible   *bool   `json:"is_visible,omitempty"`
}

type AdminCreateUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	RoleID   *uint  `json:"role_id,omitempty"`
}

type AdminUpdateUserRequest struct {
	FullName  *string `json:"full_name,omitempty"`
	RoleID    *uint   `json:"role_id,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	IsVisible *bool   `json:"is_visible,omitempty"`
}

type UserRoleRequest struct {
	RoleID uint `json:"role_id" validate:"required"`
}

type UserPermissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids" validate:"required"`
}

type DeviceTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type CreateRoleRequest struct {
	Name          string  `json:"name" validate:"required"`
	Description   *string `json:"description,omitempty"`
	PermissionIDs []uint  `json:"permission_ids,omitempty"`
}

type UpdateRoleRequest struct {
	Name          *string `json:"name,omitempty"`
	Description   *string `json:"description,omitempty"`
	PermissionIDs *[]uint `json:"permission_ids,omitempty"`
}

type CreatePermissionRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
}

type UpdatePermissionRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
