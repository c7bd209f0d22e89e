package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/dto"
)

type AuthHandler struct {
	service ports.AuthService
	logger  *logger.Logger
}

func NewAuthHandler(service ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.service.Signup(c.UserContext(), req.ToInput())
	if err != nil {
		return respondError(c, h.logger, "signup_failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.UserToResponse(user))
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.logger, "login_failed", err)
	}
	h.logger.Infow("login_success", "user_id", res.User.ID)
	return c.JSON(dto.LoginResponse{
		Token:     res.Token,
		TokenType: "Bearer",
		ExpiresAt: res.ExpiresAt,
		User:      dto.UserToResponse(res.User),
	})
}
