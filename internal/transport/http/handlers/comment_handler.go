package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/dto"
)

type CommentHandler struct {
	service ports.CommentService
	logger  *logger.Logger
}

func NewCommentHandler(service ports.CommentService, logger *logger.Logger) *CommentHandler {
	return &CommentHandler{service: service, logger: logger}
}

func (h *CommentHandler) CreateComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if errors := req.Validate(); len(errors) > 0 {
		return badRequest(c, "validation failed", errors...)
	}

	comment, err := h.service.CreateComment(c.UserContext(), caller(c), ports.CreateCommentInput{
		TaskID:   req.TaskID,
		ParentID: req.ParentID,
		Content:  req.Content,
	})
	if err != nil {
		return respondError(c, h.logger, "comment_create_failed", err)
	}
	h.logger.Infow("comment_create_success", "id", comment.ID, "task_id", comment.TaskID)
	return c.Status(fiber.StatusCreated).JSON(dto.CommentToResponse(comment))
}

func (h *CommentHandler) UpdateComment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid comment id")
	}
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	comment, err := h.service.UpdateComment(c.UserContext(), caller(c), id, req.Content)
	if err != nil {
		return respondError(c, h.logger, "comment_update_failed", err)
	}
	return c.JSON(dto.CommentToResponse(comment))
}

func (h *CommentHandler) DeleteComment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid comment id")
	}
	if err := h.service.DeleteComment(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, h.logger, "comment_delete_failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTaskComments answers the reply tree, or a flat page when ?page or ?size
// is given.
func (h *CommentHandler) ListTaskComments(c *fiber.Ctx) error {
	taskID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid task id")
	}

	if c.Query("page") != "" || c.Query("size") != "" {
		page, err := h.service.ListComments(c.UserContext(), caller(c), taskID, pageRequest(c))
		if err != nil {
			return respondError(c, h.logger, "comments_list_failed", err)
		}
		return c.JSON(dto.PageOf(page, dto.CommentToResponse))
	}

	thread, err := h.service.GetThread(c.UserContext(), caller(c), taskID)
	if err != nil {
		return respondError(c, h.logger, "comments_thread_failed", err)
	}
	return c.JSON(dto.ThreadToResponse(thread))
}
