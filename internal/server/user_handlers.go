// Package server contains the HTTP handlers for the Drobeo API.
package server

import (
	"context"
	"time"

	"drobeo/internal/models"
	"drobeo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update current user profile
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.UpdateProfileInput true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	req.UserID = currentUserID(c)

	user, err := s.userService.UpdateProfile(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// CompleteOnboarding handles POST /api/users/me/onboarding
// @Summary Save style preferences
// @Description Stores the onboarding answers and marks onboarding as complete
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.Preferences true "Preferences"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/onboarding [post]
func (s *Server) CompleteOnboarding(c *fiber.Ctx) error {
	var prefs models.Preferences
	if err := parseBody(c, &prefs); err != nil {
		return nil
	}

	user, err := s.userService.CompleteOnboarding(c.UserContext(), currentUserID(c), prefs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// GetCategories handles GET /api/categories
// @Summary List clothing categories
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) GetCategories(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	categories, err := s.categoryService.List(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// CreateCategory handles POST /api/categories
// @Summary Create a clothing category
// @Tags categories
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.CategoryInput true "Category"
// @Success 201 {object} models.Category
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /categories [post]
func (s *Server) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	category, err := s.categoryService.Create(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// GetStats handles GET /api/stats
// @Summary Wardrobe statistics
// @Tags stats
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.UserStats
// @Router /stats [get]
func (s *Server) GetStats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	stats, err := s.userService.Stats(ctx, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}
