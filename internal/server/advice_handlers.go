package server

import (
	"github.com/gofiber/fiber/v2"
)

type styleAdviceRequest struct {
	Question string `json:"question"`
}

type styleAdviceResponse struct {
	Advice string `json:"advice"`
}

// GetStyleAdvice handles POST /api/style-advice
// @Summary Ask the stylist
// @Description Answers a free-form styling question using the caller's wardrobe for context
// @Tags advice
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body styleAdviceRequest true "Question"
// @Success 200 {object} styleAdviceResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 412 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /style-advice [post]
func (s *Server) GetStyleAdvice(c *fiber.Ctx) error {
	var req styleAdviceRequest
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	advice, err := s.adviceService.GetStyleAdvice(c.UserContext(), currentUserID(c), req.Question)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(styleAdviceResponse{Advice: advice})
}
