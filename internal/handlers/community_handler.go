package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/middleware"
	"github.com/okaz-app/okaz-backend/internal/models"
	"github.com/okaz-app/okaz-backend/internal/services"
)

type CommunityHandler struct {
	communityService *services.CommunityService
}

func NewCommunityHandler(communityService *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{communityService: communityService}
}

func (h *CommunityHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	var req dto.CreateCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	community, err := h.communityService.Create(c.Context(), user, &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(community)
}

func (h *CommunityHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	community, err := h.communityService.Find(id)
	if err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(community)
}

func (h *CommunityHandler) List(c *fiber.Ctx) error {
	page, err := h.communityService.List(
		c.Query("status"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 10),
	)
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *CommunityHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	community, err := h.communityService.Update(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(community)
}

func (h *CommunityHandler) Validate(c *fiber.Ctx) error {
	return h.setStatus(c, models.CommunityValidated)
}

func (h *CommunityHandler) Reject(c *fiber.Ctx) error {
	return h.setStatus(c, models.CommunityRejected)
}

func (h *CommunityHandler) setStatus(c *fiber.Ctx, status models.CommunityStatus) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	community, err := h.communityService.SetStatus(id, status)
	if err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(community)
}

func (h *CommunityHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.communityService.Delete(id); err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CommunityHandler) Members(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	page, err := h.communityService.Members(id, c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(page)
}

func (h *CommunityHandler) Apply(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	application, err := h.communityService.Apply(c.Context(), user, id)
	if err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if errors.Is(err, services.ErrAlreadyMember) || errors.Is(err, services.ErrApplicationExists) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(application)
}

func (h *CommunityHandler) Applications(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	page, err := h.communityService.Applications(id,
		c.Query("status"),
		c.QueryInt("page", 1),
		c.QueryInt("limit", 10),
	)
	if err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(page)
}

func (h *CommunityHandler) AcceptApplication(c *fiber.Ctx) error {
	id, err := parseID(c, "applicationId")
	if err != nil {
		return err
	}
	application, err := h.communityService.AcceptApplication(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if errors.Is(err, services.ErrApplicationResolved) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}
	return c.JSON(application)
}

func (h *CommunityHandler) RejectApplication(c *fiber.Ctx) error {
	id, err := parseID(c, "applicationId")
	if err != nil {
		return err
	}
	application, err := h.communityService.RejectApplication(c.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrApplicationNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if errors.Is(err, services.ErrApplicationResolved) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}
	return c.JSON(application)
}

func (h *CommunityHandler) Invite(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.InviteCommunityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	invitation, err := h.communityService.Invite(c.Context(), user, id, req.Email)
	if err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if errors.Is(err, services.ErrAlreadyMember) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(invitation)
}

func (h *CommunityHandler) Invitations(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	page, err := h.communityService.Invitations(id, c.QueryInt("page", 1), c.QueryInt("limit", 10))
	if err != nil {
		if errors.Is(err, services.ErrCommunityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(page)
}

func (h *CommunityHandler) AcceptInvitation(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	var req dto.AcceptInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	invitation, err := h.communityService.AcceptInvitation(user, req.Token)
	if err != nil {
		return invitationError(err)
	}
	return c.JSON(invitation)
}

func (h *CommunityHandler) RejectInvitation(c *fiber.Ctx) error {
	var req dto.AcceptInvitationRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	invitation, err := h.communityService.RejectInvitation(req.Token)
	if err != nil {
		return invitationError(err)
	}
	return c.JSON(invitation)
}

func invitationError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvitationNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvitationExpired),
		errors.Is(err, services.ErrInvitationNotPending):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
