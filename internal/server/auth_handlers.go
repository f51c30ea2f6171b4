package server

import (
	"drobeo/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Signup handles POST /api/auth/signup
// @Summary User signup
// @Description Register a new account with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.SignupInput true "Signup request"
// @Success 201 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req service.SignupInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.Signup(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

// Login handles POST /api/auth/login
// @Summary User login
// @Description Authenticate with email and password and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}
	res, err := s.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// SendPhoneCode handles POST /api/auth/phone/send-code
// @Summary Send a verification code
// @Description Text a 6-digit one-time code to the phone number. Codes expire after 10 minutes.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{phone_number=string} true "Phone number"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /auth/phone/send-code [post]
func (s *Server) SendPhoneCode(c *fiber.Ctx) error {
	var req struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	if err := s.authService.SendPhoneCode(c.UserContext(), req.PhoneNumber); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Verification code sent"})
}

// VerifyPhone handles POST /api/auth/phone/verify
// @Summary Verify a phone number
// @Description Consume a code and sign in, creating the account on first verification
// @Tags auth
// @Accept json
// @Produce json
// @Param request body service.PhoneVerifyInput true "Verification"
// @Success 200 {object} service.AuthResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/phone/verify [post]
func (s *Server) VerifyPhone(c *fiber.Ctx) error {
	var req service.PhoneVerifyInput
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.VerifyPhone(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	status := fiber.StatusOK
	if res.NewUser {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(res)
}

// PhoneLogin handles POST /api/auth/phone/login
// @Summary Sign in with a phone code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{phone_number=string,code=string} true "Phone login"
// @Success 200 {object} service.AuthResult
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /auth/phone/login [post]
func (s *Server) PhoneLogin(c *fiber.Ctx) error {
	var req struct {
		PhoneNumber string `json:"phone_number"`
		Code        string `json:"code"`
	}
	if err := parseBody(c, &req); err != nil {
		return nil
	}

	res, err := s.authService.PhoneLogin(c.UserContext(), req.PhoneNumber, req.Code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// Logout handles POST /api/auth/logout
// @Summary Logout
// @Description Revoke the current access token
// @Tags auth
// @Security BearerAuth
// @Success 200 {object} object{message=string}
// @Router /auth/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.authService.Logout(c.UserContext(), currentClaims(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me
// @Summary Current user
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (s *Server) Me(c *fiber.Ctx) error {
	user, err := s.authService.Me(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}
