package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/services"
)

type RoleHandler struct {
	roleService *services.RoleService
}

func NewRoleHandler(roleService *services.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

func (h *RoleHandler) CreateRole(c *fiber.Ctx) error {
	var req dto.CreateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	role, err := h.roleService.CreateRole(&req)
	if err != nil {
		if errors.Is(err, services.ErrRoleNameTaken) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		if errors.Is(err, services.ErrPermissionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(role)
}

func (h *RoleHandler) GetRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	role, err := h.roleService.FindRole(id)
	if err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(role)
}

func (h *RoleHandler) ListRoles(c *fiber.Ctx) error {
	roles, err := h.roleService.ListRoles()
	if err != nil {
		return err
	}
	return c.JSON(roles)
}

func (h *RoleHandler) UpdateRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	role, err := h.roleService.UpdateRole(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrRoleNotFound) || errors.Is(err, services.ErrPermissionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(role)
}

func (h *RoleHandler) DeleteRole(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.roleService.DeleteRole(id); err != nil {
		if errors.Is(err, services.ErrRoleNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *RoleHandler) CreatePermission(c *fiber.Ctx) error {
	var req dto.CreatePermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	perm, err := h.roleService.CreatePermission(&req)
	if err != nil {
		if errors.Is(err, services.ErrPermissionTaken) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(perm)
}

func (h *RoleHandler) GetPermission(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	perm, err := h.roleService.FindPermission(id)
	if err != nil {
		if errors.Is(err, services.ErrPermissionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(perm)
}

func (h *RoleHandler) ListPermissions(c *fiber.Ctx) error {
	perms, err := h.roleService.ListPermissions()
	if err != nil {
		return err
	}
	return c.JSON(perms)
}

func (h *RoleHandler) UpdatePermission(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdatePermissionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	perm, err := h.roleService.UpdatePermission(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrPermissionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(perm)
}

func (h *RoleHandler) DeletePermission(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.roleService.DeletePermission(id); err != nil {
		if errors.Is(err, services.ErrPermissionNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
