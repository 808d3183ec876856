package server

import (
	"github.com/gofiber/fiber/v2"

	"livefeed/internal/models"
	"livefeed/internal/service"
)

// SignupRequest is the JSON body for account registration.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest is the JSON body for obtaining a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StatusRequest is the JSON body for updating the caller's status line.
type StatusRequest struct {
	Status string `json:"status"`
}

// Signup registers a new user account.
func (s *Server) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body."))
	}

	user, err := s.userService.Signup(c.Context(), service.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created!",
		"userId":  user.ID,
	})
}

// Login exchanges credentials for an access token.
func (s *Server) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body."))
	}

	result, err := s.userService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token":  result.Token,
		"userId": result.UserID,
	})
}

// GetStatus returns the caller's status line.
func (s *Server) GetStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	status, err := s.userService.GetStatus(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": status,
	})
}

// UpdateStatus replaces the caller's status line.
func (s *Server) UpdateStatus(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body."))
	}

	if err := s.userService.UpdateStatus(c.Context(), userID, req.Status); err != nil {
		return models.RespondWithError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "User updated.",
	})
}
