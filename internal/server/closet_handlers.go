package server

import (
	"strconv"
	"strings"

	"drobeo/internal/models"
	"drobeo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetClothingItems handles GET /api/clothing-items
// @Summary List wardrobe items
// @Tags clothing-items
// @Security BearerAuth
// @Produce json
// @Param category_id query int false "Category filter"
// @Param season query string false "Season filter"
// @Param color query string false "Color filter"
// @Param search query string false "Name or brand search"
// @Success 200 {array} models.ClothingItem
// @Failure 400 {object} models.ErrorResponse
// @Router /clothing-items [get]
func (s *Server) GetClothingItems(c *fiber.Ctx) error {
	filter := models.ClothingItemFilter{
		Season: models.Season(strings.TrimSpace(c.Query("season"))),
		Color:  strings.TrimSpace(c.Query("color")),
		Search: strings.TrimSpace(c.Query("search")),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return respondError(c, models.NewFieldValidationError(models.FieldError{Field: "category_id", Message: "must be a positive integer"}))
		}
		filter.CategoryID = uint(id)
	}

	items, err := s.closetService.List(c.UserContext(), currentUserID(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// CreateClothingItem handles POST /api/clothing-items
// @Summary Add an item to the wardrobe
// @Tags clothing-items
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body service.ItemInput true "Item"
// @Success 201 {object} models.ClothingItem
// @Failure 400 {object} models.ErrorResponse
// @Router /clothing-items [post]
func (s *Server) CreateClothingItem(c *fiber.Ctx) error {
	var req service.ItemInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	item, err := s.closetService.Create(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetRecentClothingItems handles GET /api/clothing-items/recent
// @Summary Recently added items
// @Tags clothing-items
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum items (default 4)"
// @Success 200 {array} models.ClothingItem
// @Router /clothing-items/recent [get]
func (s *Server) GetRecentClothingItems(c *fiber.Ctx) error {
	items, err := s.closetService.Recent(c.UserContext(), currentUserID(c), c.QueryInt("limit", service.DefaultRecentLimit))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

// AnalyzeClothingImage handles POST /api/clothing-items/analyze
// @Summary Classify a garment photo
// @Description Runs image analysis without creating an item
// @Tags clothing-items
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Garment photo"
// @Success 200 {object} ai.ImageAnalysis
// @Failure 400 {object} models.ErrorResponse
// @Failure 412 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /clothing-items/analyze [post]
func (s *Server) AnalyzeClothingImage(c *fiber.Ctx) error {
	content, contentType, err := readUpload(c)
	if err != nil {
		return respondError(c, err)
	}

	analysis, err := s.closetService.Analyze(c.UserContext(), currentUserID(c), content, contentType)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(analysis)
}

// UploadClothingItem handles POST /api/clothing-items/upload
// @Summary Add an item from a photo
// @Description Stores the photo and fills missing fields from image analysis
// @Tags clothing-items
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param image formData file true "Garment photo"
// @Param name formData string true "Item name"
// @Param category_id formData int false "Category"
// @Param brand formData string false "Brand"
// @Param color formData string false "Color"
// @Param season formData string false "Season"
// @Param tags formData string false "Comma separated tags"
// @Success 201 {object} models.ClothingItem
// @Failure 400 {object} models.ErrorResponse
// @Router /clothing-items/upload [post]
func (s *Server) UploadClothingItem(c *fiber.Ctx) error {
	content, contentType, err := readUpload(c)
	if err != nil {
		return respondError(c, err)
	}

	in := service.UploadInput{
		Content:     content,
		ContentType: contentType,
		Item: service.ItemInput{
			Name:   c.FormValue("name"),
			Brand:  c.FormValue("brand"),
			Color:  c.FormValue("color"),
			Season: models.Season(strings.TrimSpace(c.FormValue("season"))),
			Tags:   splitTags(c.FormValue("tags")),
		},
	}
	if raw := strings.TrimSpace(c.FormValue("category_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return respondError(c, models.NewFieldValidationError(models.FieldError{Field: "category_id", Message: "must be a positive integer"}))
		}
		in.Item.CategoryID = uint(id)
	}

	item, err := s.closetService.CreateFromUpload(c.UserContext(), currentUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// GetClothingItem handles GET /api/clothing-items/:id
// @Summary Get a wardrobe item
// @Tags clothing-items
// @Security BearerAuth
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.ClothingItem
// @Failure 404 {object} models.ErrorResponse
// @Router /clothing-items/{id} [get]
func (s *Server) GetClothingItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.closetService.Get(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// UpdateClothingItem handles PUT /api/clothing-items/:id
// @Summary Update a wardrobe item
// @Description Only the fields present in the body change
// @Tags clothing-items
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param request body service.ItemPatch true "Changed fields"
// @Success 200 {object} models.ClothingItem
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /clothing-items/{id} [put]
func (s *Server) UpdateClothingItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var patch service.ItemPatch
	if err := parseBody(c, &patch); err != nil {
		return nil
	}

	item, err := s.closetService.Update(c.UserContext(), currentUserID(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// DeleteClothingItem handles DELETE /api/clothing-items/:id
// @Summary Remove a wardrobe item
// @Tags clothing-items
// @Security BearerAuth
// @Param id path int true "Item ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /clothing-items/{id} [delete]
func (s *Server) DeleteClothingItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.closetService.Delete(c.UserContext(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleClothingItemFavorite handles POST /api/clothing-items/:id/favorite
// @Summary Toggle item favorite
// @Tags clothing-items
// @Security BearerAuth
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.ClothingItem
// @Failure 404 {object} models.ErrorResponse
// @Router /clothing-items/{id}/favorite [post]
func (s *Server) ToggleClothingItemFavorite(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.closetService.ToggleFavorite(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// WearClothingItem handles POST /api/clothing-items/:id/wear
// @Summary Mark an item worn
// @Tags clothing-items
// @Security BearerAuth
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.ClothingItem
// @Failure 404 {object} models.ErrorResponse
// @Router /clothing-items/{id}/wear [post]
func (s *Server) WearClothingItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.closetService.Wear(c.UserContext(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

// splitTags accepts "a, b,c" as sent by multipart forms.
func splitTags(raw string) []string {
	var tags []string
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
