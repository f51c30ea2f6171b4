package server

import (
	"strconv"
	"strings"

	"drobeo/internal/models"
	"drobeo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetOutfits handles GET /api/outfits
// @Summary List outfits
// @Tags outfits
// @Security BearerAuth
// @Produce json
// @Param occasion query string false "Occasion filter"
// @Param weather_condition query string false "Weather filter"
// @Param ai_generated query bool false "Only generated (true) or only manual (false) outfits"
// @Success 200 {array} models.Outfit
// @Router /outfits [get]
func (s *Server) GetOutfits(c *fiber.Ctx) error {
	filter := models.OutfitFilter{
		Occasion:         models.Occasion(strings.TrimSpace(c.Query("occasion"))),
		WeatherCondition: models.Weather(strings.TrimSpace(c.Query("weather_condition"))),
	}
	if raw := c.Query("ai_generated"); raw != "" {
		generated, err := strconv.ParseBool(raw)
		if err != nil {
			return respondError(c, models.NewFieldValidationError(models.FieldError{Field: "ai_generated", Message: "must be true or false"}))
		}
		filter.AIGenerated = &generated
	}

	outfits, err := s.outfitService.List(c.UserContext(), currentUserID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(outfits)
}

// CreateOutfit handles POST /api/outfits
// @Summary Save an outfit
// @Tags outfits
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.OutfitInput true "Outfit"
// @Success 201 {object} models.Outfit
// @Failure 400 {object} models.ErrorResponse
// @Router /outfits [post]
func (s *Server) CreateOutfit(c *fiber.Ctx) error {
	var req service.OutfitInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	outfit, err := s.outfitService.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(outfit)
}

// GenerateOutfits handles POST /api/outfits/generate
// @Summary Generate outfit suggestions
// @Description Asks the stylist model for up to three outfits built from the caller's wardrobe and saves them
// @Tags outfits
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.GenerateOutfitsInput true "Occasion, weather and optional style hints"
// @Success 201 {array} models.Outfit
// @Failure 400 {object} models.ErrorResponse
// @Failure 412 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /outfits/generate [post]
func (s *Server) GenerateOutfits(c *fiber.Ctx) error {
	var req service.GenerateOutfitsInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	outfits, err := s.recommendationService.GenerateOutfits(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(outfits)
}

// GetOutfit handles GET /api/outfits/:id
// @Summary Get an outfit
// @Tags outfits
// @Security BearerAuth
// @Produce json
// @Param id path int true "Outfit ID"
// @Success 200 {object} models.Outfit
// @Failure 404 {object} models.ErrorResponse
// @Router /outfits/{id} [get]
func (s *Server) GetOutfit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	outfit, err := s.outfitService.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(outfit)
}

// UpdateOutfit handles PUT /api/outfits/:id
// @Summary Update an outfit
// @Tags outfits
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Outfit ID"
// @Param request body service.OutfitPatch true "Changed fields"
// @Success 200 {object} models.Outfit
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /outfits/{id} [put]
func (s *Server) UpdateOutfit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch service.OutfitPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}

	outfit, err := s.outfitService.Update(c.UserContext(), currentUserID(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(outfit)
}

// DeleteOutfit handles DELETE /api/outfits/:id
// @Summary Delete an outfit
// @Tags outfits
// @Security BearerAuth
// @Param id path int true "Outfit ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /outfits/{id} [delete]
func (s *Server) DeleteOutfit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.outfitService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleOutfitFavorite handles POST /api/outfits/:id/favorite
func (s *Server) ToggleOutfitFavorite(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	outfit, err := s.outfitService.ToggleFavorite(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(outfit)
}

// WearOutfit handles POST /api/outfits/:id/wear
// @Summary Mark an outfit worn
// @Description Also marks every item in the outfit worn
// @Tags outfits
// @Security BearerAuth
// @Produce json
// @Param id path int true "Outfit ID"
// @Success 200 {object} models.Outfit
// @Failure 404 {object} models.ErrorResponse
// @Router /outfits/{id}/wear [post]
func (s *Server) WearOutfit(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	outfit, err := s.outfitService.Wear(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(outfit)
}
