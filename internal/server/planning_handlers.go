package server

import (
	"time"

	"drobeo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCalendar handles GET /api/calendar?start=YYYY-MM-DD&end=YYYY-MM-DD
// @Summary Planned outfits in a date range
// @Description Both bounds are inclusive. Without bounds the current week starting today is returned.
// @Tags calendar
// @Security BearerAuth
// @Produce json
// @Param start query string false "First day (YYYY-MM-DD)"
// @Param end query string false "Last day (YYYY-MM-DD)"
// @Success 200 {array} models.OutfitCalendarEntry
// @Failure 400 {object} models.ErrorResponse
// @Router /calendar [get]
func (s *Server) GetCalendar(c *fiber.Ctx) error {
	start := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := c.Query("start"); raw != "" {
		day, err := service.ParseDay("start", raw)
		if err != nil {
			return respondError(c, err)
		}
		start = day
	}
	end := start.AddDate(0, 0, 6)
	if raw := c.Query("end"); raw != "" {
		day, err := service.ParseDay("end", raw)
		if err != nil {
			return respondError(c, err)
		}
		end = day
	}

	entries, err := s.calendarService.Range(c.UserContext(), currentUserID(c), start, end)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entries)
}

// CreateCalendarEntry handles POST /api/calendar
// @Summary Plan an outfit for a day
// @Tags calendar
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.CalendarEntryInput true "Entry"
// @Success 201 {object} models.OutfitCalendarEntry
// @Failure 400 {object} models.ErrorResponse
// @Router /calendar [post]
func (s *Server) CreateCalendarEntry(c *fiber.Ctx) error {
	var req service.CalendarEntryInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	entry, err := s.calendarService.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// UpdateCalendarEntry handles PUT /api/calendar/:id
// @Summary Replace a calendar entry
// @Tags calendar
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param request body service.CalendarEntryInput true "Entry"
// @Success 200 {object} models.OutfitCalendarEntry
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /calendar/{id} [put]
func (s *Server) UpdateCalendarEntry(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.CalendarEntryInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	entry, err := s.calendarService.Update(c.UserContext(), currentUserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(entry)
}

// DeleteCalendarEntry handles DELETE /api/calendar/:id
func (s *Server) DeleteCalendarEntry(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.calendarService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetWishlist handles GET /api/wishlist
// @Summary Wishlist
// @Description Ordered by priority, most wanted first
// @Tags wishlist
// @Security BearerAuth
// @Produce json
// @Success 200 {array} models.WishlistItem
// @Router /wishlist [get]
func (s *Server) GetWishlist(c *fiber.Ctx) error {
	items, err := s.wishlistService.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// CreateWishlistItem handles POST /api/wishlist
// @Summary Add to wishlist
// @Tags wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.WishlistInput true "Wishlist item"
// @Success 201 {object} models.WishlistItem
// @Failure 400 {object} models.ErrorResponse
// @Router /wishlist [post]
func (s *Server) CreateWishlistItem(c *fiber.Ctx) error {
	var req service.WishlistInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	item, err := s.wishlistService.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateWishlistItem handles PUT /api/wishlist/:id
// @Summary Replace a wishlist item
// @Tags wishlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Wishlist item ID"
// @Param request body service.WishlistInput true "Wishlist item"
// @Success 200 {object} models.WishlistItem
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /wishlist/{id} [put]
func (s *Server) UpdateWishlistItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.WishlistInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	item, err := s.wishlistService.Update(c.UserContext(), currentUserID(c), id, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// DeleteWishlistItem handles DELETE /api/wishlist/:id
func (s *Server) DeleteWishlistItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.wishlistService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
