package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/okaz-app/okaz-backend/internal/config"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/middleware"
	"github.com/okaz-app/okaz-backend/internal/services"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	cfg         *config.Config
	authService *services.AuthService
	userService *services.UserService
}

func NewAuthHandler(cfg *config.Config, authService *services.AuthService, userService *services.UserService) *AuthHandler {
	return &AuthHandler{cfg: cfg, authService: authService, userService: userService}
}

// setRefreshCookie scopes the refresh token to the refresh endpoint so it is
// never sent on regular API calls.
func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/api/v1/auth/refresh",
		MaxAge:   int(h.cfg.JWTRefreshExpiry / time.Second),
		HTTPOnly: true,
		SameSite: "Strict",
	})
}

func (h *AuthHandler) clearRefreshCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/api/v1/auth/refresh",
		MaxAge:   -1,
		HTTPOnly: true,
		SameSite: "Strict",
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	user, pair, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	user, pair, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(fiber.Map{
		"user":        user,
		"accessToken": pair.AccessToken,
	})
}

// Refresh rotates the token pair. The refresh token is read from the cookie
// first and the body as a fallback for non-browser clients.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	presented := c.Cookies(refreshCookie)
	if presented == "" {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.BodyParser(&req); err == nil {
			presented = req.RefreshToken
		}
	}
	if presented == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing refresh token")
	}

	userID, _, err := h.authService.ParseRefreshToken(presented)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, services.ErrInvalidToken.Error())
	}
	_, pair, err := h.authService.Refresh(userID, presented)
	if err != nil {
		if errors.Is(err, services.ErrInvalidToken) {
			h.clearRefreshCookie(c)
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		return err
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(dto.AccessTokenResponse{AccessToken: pair.AccessToken})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	if err := h.authService.Logout(userID); err != nil {
		return err
	}
	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"message": "logged out"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == 0 {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(userID, req.OldPassword, req.NewPassword); err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		if errors.Is(err, services.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	h.clearRefreshCookie(c)
	return c.JSON(fiber.Map{"message": "password changed"})
}

func (h *AuthHandler) ValidateOTP(c *fiber.Ctx) error {
	var req dto.ValidateOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.userService.ValidateOTP(req.Email, req.OTP); err != nil {
		if errors.Is(err, services.ErrOTPInvalid) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if errors.Is(err, services.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(fiber.Map{"message": "account activated"})
}

func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req dto.ResendOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if err := h.userService.ResendOTP(req.Email); err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(fiber.Map{"message": "code sent"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	}
	return c.JSON(user)
}
