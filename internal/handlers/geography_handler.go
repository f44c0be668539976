package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/okaz-app/okaz-backend/internal/dto"
	"github.com/okaz-app/okaz-backend/internal/services"
)

type GeographyHandler struct {
	geographyService *services.GeographyService
}

func NewGeographyHandler(geographyService *services.GeographyService) *GeographyHandler {
	return &GeographyHandler{geographyService: geographyService}
}

func (h *GeographyHandler) CreateCountry(c *fiber.Ctx) error {
	var req dto.CreateCountryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	country, err := h.geographyService.CreateCountry(&req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(country)
}

func (h *GeographyHandler) GetCountry(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	country, err := h.geographyService.FindCountry(id)
	if err != nil {
		if errors.Is(err, services.ErrCountryNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(country)
}

func (h *GeographyHandler) ListCountries(c *fiber.Ctx) error {
	countries, err := h.geographyService.ListCountries()
	if err != nil {
		return err
	}
	return c.JSON(countries)
}

func (h *GeographyHandler) UpdateCountry(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCountryRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	country, err := h.geographyService.UpdateCountry(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrCountryNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(country)
}

func (h *GeographyHandler) DeleteCountry(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.geographyService.DeleteCountry(id); err != nil {
		if errors.Is(err, services.ErrCountryNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *GeographyHandler) CreateCity(c *fiber.Ctx) error {
	var req dto.CreateCityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := dto.Validate(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	city, err := h.geographyService.CreateCity(&req)
	if err != nil {
		if errors.Is(err, services.ErrCountryNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(city)
}

func (h *GeographyHandler) GetCity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	city, err := h.geographyService.FindCity(id)
	if err != nil {
		if errors.Is(err, services.ErrCityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(city)
}

func (h *GeographyHandler) ListCities(c *fiber.Ctx) error {
	cities, err := h.geographyService.ListCities(uint(c.QueryInt("country_id", 0)))
	if err != nil {
		return err
	}
	return c.JSON(cities)
}

func (h *GeographyHandler) UpdateCity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateCityRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	city, err := h.geographyService.UpdateCity(id, &req)
	if err != nil {
		if errors.Is(err, services.ErrCityNotFound) || errors.Is(err, services.ErrCountryNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.JSON(city)
}

func (h *GeographyHandler) DeleteCity(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.geographyService.DeleteCity(id); err != nil {
		if errors.Is(err, services.ErrCityNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
