package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/dto"
)

type NotificationHandler struct {
	service ports.NotificationService
	logger  *logger.Logger
}

func NewNotificationHandler(service ports.NotificationService, logger *logger.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, logger: logger}
}

func (h *NotificationHandler) ListForUser(c *fiber.Ctx) error {
	return h.list(c, c.QueryBool("unread", false))
}

func (h *NotificationHandler) ListUnread(c *fiber.Ctx) error {
	return h.list(c, true)
}

func (h *NotificationHandler) list(c *fiber.Ctx, unreadOnly bool) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	page, err := h.service.ListForUser(c.UserContext(), caller(c), userID, unreadOnly, pageRequest(c))
	if err != nil {
		return respondError(c, h.logger, "notifications_list_failed", err)
	}
	return c.JSON(dto.PageOf(page, dto.NotificationToResponse))
}

func (h *NotificationHandler) CountUnread(c *fiber.Ctx) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	n, err := h.service.CountUnread(c.UserContext(), caller(c), userID)
	if err != nil {
		return respondError(c, h.logger, "notifications_count_failed", err)
	}
	return c.JSON(dto.CountResponse{Count: n})
}

func (h *NotificationHandler) GetNotification(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid notification id")
	}
	n, err := h.service.GetNotification(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, h.logger, "notification_get_failed", err)
	}
	return c.JSON(dto.NotificationToResponse(n))
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid notification id")
	}
	n, err := h.service.MarkAsRead(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, h.logger, "notification_mark_read_failed", err)
	}
	return c.JSON(dto.NotificationToResponse(n))
}

func (h *NotificationHandler) DeleteNotification(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid notification id")
	}
	if err := h.service.DeleteNotification(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, h.logger, "notification_delete_failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
