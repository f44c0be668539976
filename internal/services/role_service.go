package services

import (
	"errors"

	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/models"
	"gorm.io/gorm"
)

// RoleService manages roles and the permission catalog.
type RoleService struct {
	db *gorm.DB
}

func NewRoleService(db *gorm.DB) *RoleService {
	return &RoleService{db: db}
}

func (s *RoleService) CreateRole(req *dto.CreateRoleRequest) (*models.Role, error) {
	var existing models.Role
	if err := s.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return nil, ErrRoleNameTaken
	}
	role := models.Role{Name: req.Name, Description: req.Description}
	if len(req.PermissionIDs) > 0 {
		var perms []models.Permission
		if err := s.db.Find(&perms, "id IN ?", req.PermissionIDs).Error; err != nil {
			return nil, err
		}
		if len(perms) != len(req.PermissionIDs) {
			return nil, ErrPermissionNotFound
		}
		role.Permissions = perms
	}
	if err := s.db.Create(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *RoleService) FindRole(id uint) (*models.Role, error) {
	var role models.Role
	err := s.db.Preload("Permissions").First(&role, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	return &role, nil
}

func (s *RoleService) ListRoles() ([]models.Role, error) {
	var roles []models.Role
	err := s.db.Preload("Permissions").Order("name").Find(&roles).Error
	return roles, err
}

func (s *RoleService) UpdateRole(id uint, req *dto.UpdateRoleRequest) (*models.Role, error) {
	role, err := s.FindRole(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		role.Name = *req.Name
	}
	if req.Description != nil {
		role.Description = req.Description
	}
	if err := s.db.Save(role).Error; err != nil {
		return nil, err
	}
	if req.PermissionIDs != nil {
		var perms []models.Permission
		if len(*req.PermissionIDs) > 0 {
			if err := s.db.Find(&perms, "id IN ?", *req.PermissionIDs).Error; err != nil {
				return nil, err
			}
			if len(perms) != len(*req.PermissionIDs) {
				return nil, ErrPermissionNotFound
			}
		}
		if err := s.db.Model(role).Association("Permissions").Replace(perms); err != nil {
			return nil, err
		}
	}
	return s.FindRole(id)
}

func (s *RoleService) DeleteRole(id uint) error {
	role, err := s.FindRole(id)
	if err != nil {
		return err
	}
	return s.db.Delete(role).Error
}

func (s *RoleService) CreatePermission(req *dto.CreatePermissionRequest) (*models.Permission, error) {
	var existing models.Permission
	if err := s.db.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return nil, ErrPermissionTaken
	}
	perm := models.Permission{Name: req.Name, Description: req.Description}
	if err := s.db.Create(&perm).Error; err != nil {
		return nil, err
	}
	return &perm, nil
}

func (s *RoleService) FindPermission(id uint) (*models.Permission, error) {
	var perm models.Permission
	err := s.db.First(&perm, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPermissionNotFound
		}
		return nil, err
	}
	return &perm, nil
}

func (s *RoleService) ListPermissions() ([]models.Permission, error) {
	var perms []models.Permission
	err := s.db.Order("name").Find(&perms).Error
	return perms, err
}

func (s *RoleService) UpdatePermission(id uint, req *dto.UpdatePermissionRequest) (*models.Permission, error) {
	perm, err := s.FindPermission(id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		perm.Name = *req.Name
	}
	if req.Description != nil {
		perm.Description = req.Description
	}
	if err := s.db.Save(perm).Error; err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *RoleService) DeletePermission(id uint) error {
	perm, err := s.FindPermission(id)
	if err != nil {
		return err
	}
	return s.db.Delete(perm).Error
}
