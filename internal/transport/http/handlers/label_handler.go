package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/dto"
)

type LabelHandler struct {
	service ports.LabelService
	logger  *logger.Logger
}

func NewLabelHandler(service ports.LabelService, logger *logger.Logger) *LabelHandler {
	return &LabelHandler{service: service, logger: logger}
}

func (h *LabelHandler) CreateLabel(c *fiber.Ctx) error {
	var req dto.LabelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if errors := req.Validate(); len(errors) > 0 {
		return badRequest(c, "validation failed", errors...)
	}

	label, err := h.service.CreateLabel(c.UserContext(), caller(c), ports.LabelInput{Name: req.Name, Color: req.Color})
	if err != nil {
		return respondError(c, h.logger, "label_create_failed", err)
	}
	h.logger.Infow("label_create_success", "id", label.ID, "name", label.Name)
	return c.Status(fiber.StatusCreated).JSON(dto.LabelToResponse(label))
}

func (h *LabelHandler) UpdateLabel(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid label id")
	}
	var req dto.LabelRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if errors := req.Validate(); len(errors) > 0 {
		return badRequest(c, "validation failed", errors...)
	}

	label, err := h.service.UpdateLabel(c.UserContext(), caller(c), id, ports.LabelInput{Name: req.Name, Color: req.Color})
	if err != nil {
		return respondError(c, h.logger, "label_update_failed", err)
	}
	return c.JSON(dto.LabelToResponse(label))
}

func (h *LabelHandler) DeleteLabel(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid label id")
	}
	if err := h.service.DeleteLabel(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, h.logger, "label_delete_failed", err)
	}
	h.logger.Infow("label_delete_success", "id", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *LabelHandler) GetLabel(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid label id")
	}
	label, err := h.service.GetLabel(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, "label_get_failed", err)
	}
	return c.JSON(dto.LabelToResponse(label))
}

func (h *LabelHandler) ListLabels(c *fiber.Ctx) error {
	page, err := h.service.ListLabels(c.UserContext(), pageRequest(c))
	if err != nil {
		return respondError(c, h.logger, "labels_list_failed", err)
	}
	return c.JSON(dto.PageOf(page, dto.LabelToResponse))
}

func (h *LabelHandler) SearchLabels(c *fiber.Ctx) error {
	labels, err := h.service.SearchLabels(c.UserContext(), c.Query("name"))
	if err != nil {
		return respondError(c, h.logger, "labels_search_failed", err)
	}
	return c.JSON(dto.LabelsToResponse(labels))
}

func (h *LabelHandler) GetTaskLabels(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid task id")
	}
	labels, err := h.service.GetTaskLabels(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, h.logger, "task_labels_failed", err)
	}
	return c.JSON(dto.LabelsToResponse(labels))
}
