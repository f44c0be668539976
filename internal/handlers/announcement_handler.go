package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/middleware"
	"github.com/okaz-app/okaz-backend/internal/services"
)

type AnnouncementHandler struct {
	announcementService *services.AnnouncementService
}

func NewAnnouncementHandler(announcementService *services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

func (h *AnnouncementHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	var req dto.CreateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	announcement, err := h.announcementService.Create(user.ID, &req)
	if err != nil {
		if errors.Is(err, services.ErrCategoryNotFound) || errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(announcement)
}

func (h *AnnouncementHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	announcement, err := h.announcementService.Find(id)
	if err != nil {
		if errors.Is(err, services.ErrAnnouncementNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(announcement)
}

func (h *AnnouncementHandler) Search(c *fiber.Ctx) error {
	var q dto.SearchAnnouncementsQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")
	}
	page, err := h.announcementService.Search(&q)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *AnnouncementHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	announcement, err := h.announcementService.Update(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrAnnouncementNotFound) || errors.Is(err, services.ErrCategoryNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(announcement)
}

func (h *AnnouncementHandler) Publish(c *fiber.Ctx) error {
	return h.setPublished(c, true)
}

func (h *AnnouncementHandler) Unpublish(c *fiber.Ctx) error {
	return h.setPublished(c, false)
}

func (h *AnnouncementHandler) setPublished(c *fiber.Ctx, published bool) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	announcement, err := h.announcementService.SetPublished(id, published)
	if err != nil {
		if errors.Is(err, services.ErrAnnouncementNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(announcement)
}

func (h *AnnouncementHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.announcementService.Delete(id); err != nil {
		if errors.Is(err, services.ErrAnnouncementNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
