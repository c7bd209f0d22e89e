package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/dto"
)

type UserHandler struct {
	service ports.UserService
	logger  *logger.Logger
}

func NewUserHandler(service ports.UserService, logger *logger.Logger) *UserHandler {
	return &UserHandler{service: service, logger: logger}
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.service.CreateUser(c.UserContext(), caller(c), req.ToInput())
	if err != nil {
		return respondError(c, h.logger, "user_create_failed", err)
	}
	h.logger.Infow("user_create_success", "id", user.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.UserToResponse(user))
}

func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req dto.UserRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.service.UpdateUser(c.UserContext(), caller(c), id, req.ToInput())
	if err != nil {
		return respondError(c, h.logger, "user_update_failed", err)
	}
	return c.JSON(dto.UserToResponse(user))
}

func (h *UserHandler) UpdateRole(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req dto.RoleRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := h.service.UpdateRole(c.UserContext(), caller(c), id, domain.UserRole(req.Role))
	if err != nil {
		return respondError(c, h.logger, "user_role_update_failed", err)
	}
	h.logger.Infow("user_role_updated", "id", id, "role", user.Role)
	return c.JSON(dto.UserToResponse(user))
}

func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	if err := h.service.DeleteUser(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, h.logger, "user_delete_failed", err)
	}
	h.logger.Infow("user_delete_success", "id", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	user, err := h.service.GetUser(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, h.logger, "user_get_failed", err)
	}
	return c.JSON(dto.UserToResponse(user))
}

// SearchUsers filters by ?query (name or email) and an optional ?role.
func (h *UserHandler) SearchUsers(c *fiber.Ctx) error {
	var role *domain.UserRole
	if raw := c.Query("role"); raw != "" {
		r := domain.UserRole(raw)
		role = &r
	}
	page, err := h.service.SearchUsers(c.UserContext(), caller(c), c.Query("query"), role, pageRequest(c))
	if err != nil {
		return respondError(c, h.logger, "users_search_failed", err)
	}
	return c.JSON(dto.PageOf(page, dto.UserToResponse))
}
