package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/dto"
)

type TaskHandler struct {
	service ports.TaskService
	logger  *logger.Logger
}

func NewTaskHandler(service ports.TaskService, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_create_body_parse_failed", "error", err)
		return badRequest(c, "invalid request body")
	}
	if errors := req.Validate(); len(errors) > 0 {
		h.logger.Warnw("task_create_validation_failed", "details", errors)
		return badRequest(c, "validation failed", errors...)
	}

	cl := caller(c)
	h.logger.Infow("task_create_request", "caller", cl.UserID, "title", req.Title)
	task, err := h.service.CreateTask(c.UserContext(), cl, req.ToInput())
	if err != nil {
		return respondError(c, h.logger, "task_create_failed", err)
	}

	h.logger.Infow("task_create_success", "id", task.ID)
	return c.Status(fiber.StatusCreated).JSON(dto.TaskToResponse(task))
}

// UpdateTask serves both PUT and PATCH: only the fields present in the body
// are changed.
func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid task id")
	}

	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("task_update_body_parse_failed", "id", id, "error", err)
		return badRequest(c, "invalid request body")
	}
	if errors := req.Validate(); len(errors) > 0 {
		h.logger.Warnw("task_update_validation_failed", "id", id, "details", errors)
		return badRequest(c, "validation failed", errors...)
	}

	input := req.ToInput()
	h.logger.Infow("task_update_request", "id", id, "fields", input.Fields())
	task, err := h.service.UpdateTask(c.UserContext(), caller(c), id, input)
	if err != nil {
		return respondError(c, h.logger, "task_update_failed", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid task id")
	}

	h.logger.Infow("task_delete_request", "id", id)
	if err := h.service.DeleteTask(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, h.logger, "task_delete_failed", err)
	}
	h.logger.Infow("task_delete_success", "id", id)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid task id")
	}
	task, err := h.service.GetTask(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, h.logger, "task_get_failed", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	page, err := h.service.ListTasks(c.UserContext(), caller(c), pageRequest(c))
	if err != nil {
		return respondError(c, h.logger, "tasks_list_failed", err)
	}
	return c.JSON(dto.PageOf(page, dto.TaskToResponse))
}

func (h *TaskHandler) ListTasksByUser(c *fiber.Ctx) error {
	userID, ok := parseID(c, "userId")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	page, err := h.service.ListTasksByUser(c.UserContext(), caller(c), userID, pageRequest(c))
	if err != nil {
		return respondError(c, h.logger, "tasks_by_user_failed", err)
	}
	return c.JSON(dto.PageOf(page, dto.TaskToResponse))
}

func (h *TaskHandler) SearchTasks(c *fiber.Ctx) error {
	var params dto.TaskSearchParams
	if err := c.QueryParser(&params); err != nil {
		return badRequest(c, "invalid query")
	}

	filter := ports.TaskFilter{
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
	}
	if params.Labels != "" {
		for _, raw := range strings.Split(params.Labels, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
			if err != nil {
				return badRequest(c, "labels must be a comma separated list of ids")
			}
			filter.LabelIDs = append(filter.LabelIDs, uint(id))
		}
	}

	page, err := h.service.SearchTasks(c.UserContext(), caller(c), filter, pageRequest(c))
	if err != nil {
		return respondError(c, h.logger, "tasks_search_failed", err)
	}
	return c.JSON(dto.PageOf(page, dto.TaskToResponse))
}

func (h *TaskHandler) GetBoard(c *fiber.Ctx) error {
	board, err := h.service.GetBoard(c.UserContext(), caller(c))
	if err != nil {
		return respondError(c, h.logger, "task_board_failed", err)
	}
	return c.JSON(dto.BoardToResponse(board))
}

func (h *TaskHandler) GetAnalytics(c *fiber.Ctx) error {
	analytics, err := h.service.GetAnalytics(c.UserContext(), caller(c), c.Query("timeFrame", c.Query("time_frame")))
	if err != nil {
		return respondError(c, h.logger, "task_analytics_failed", err)
	}
	return c.JSON(analytics)
}

func (h *TaskHandler) GetHistory(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid task id")
	}
	page, err := h.service.GetHistory(c.UserContext(), caller(c), id, pageRequest(c))
	if err != nil {
		return respondError(c, h.logger, "task_history_failed", err)
	}
	return c.JSON(dto.PageOf(page, dto.HistoryEntryToResponse))
}

func (h *TaskHandler) AddLabel(c *fiber.Ctx) error {
	id, labelID, err := taskLabelParams(c)
	if err != nil {
		return err
	}
	task, err := h.service.AddLabel(c.UserContext(), caller(c), id, labelID)
	if err != nil {
		return respondError(c, h.logger, "task_label_add_failed", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

func (h *TaskHandler) RemoveLabel(c *fiber.Ctx) error {
	id, labelID, err := taskLabelParams(c)
	if err != nil {
		return err
	}
	task, err := h.service.RemoveLabel(c.UserContext(), caller(c), id, labelID)
	if err != nil {
		return respondError(c, h.logger, "task_label_remove_failed", err)
	}
	return c.JSON(dto.TaskToResponse(task))
}

// taskLabelParams returns a 400 as a fiber.Error when either id is malformed.
func taskLabelParams(c *fiber.Ctx) (uint, uint, error) {
	id, ok := parseID(c, "id")
	if !ok {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid task id")
	}
	labelID, ok := parseID(c, "labelId")
	if !ok {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "invalid label id")
	}
	return id, labelID, nil
}
