package handlers

import (
	"mime"

	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/dto"
)

type AttachmentHandler struct {
	service ports.AttachmentService
	logger  *logger.Logger
}

func NewAttachmentHandler(service ports.AttachmentService, logger *logger.Logger) *AttachmentHandler {
	return &AttachmentHandler{service: service, logger: logger}
}

// Upload expects a multipart form with the content in the "file" field.
func (h *AttachmentHandler) Upload(c *fiber.Ctx) error {
	taskID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid task id")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		h.logger.Warnw("attachment_upload_no_file", "task_id", taskID, "error", err)
		return badRequest(c, "multipart field 'file' is required")
	}
	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.logger, "attachment_upload_open_failed", err)
	}
	defer f.Close()

	h.logger.Infow("attachment_upload_request", "task_id", taskID, "file_name", fh.Filename, "size", fh.Size)
	a, err := h.service.Upload(c.UserContext(), caller(c), ports.UploadAttachmentInput{
		TaskID:   taskID,
		FileName: fh.Filename,
		FileType: fh.Header.Get(fiber.HeaderContentType),
		Content:  f,
	})
	if err != nil {
		return respondError(c, h.logger, "attachment_upload_failed", err)
	}
	h.logger.Infow("attachment_upload_success", "id", a.ID, "task_id", taskID)
	return c.Status(fiber.StatusCreated).JSON(dto.AttachmentToResponse(a))
}

func (h *AttachmentHandler) ListByTask(c *fiber.Ctx) error {
	taskID, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid task id")
	}
	page, err := h.service.ListByTask(c.UserContext(), caller(c), taskID, pageRequest(c))
	if err != nil {
		return respondError(c, h.logger, "attachments_list_failed", err)
	}
	return c.JSON(dto.PageOf(page, dto.AttachmentToResponse))
}

func (h *AttachmentHandler) GetAttachment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid attachment id")
	}
	a, err := h.service.GetAttachment(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, h.logger, "attachment_get_failed", err)
	}
	return c.JSON(dto.AttachmentToResponse(a))
}

func (h *AttachmentHandler) Download(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid attachment id")
	}
	a, rc, err := h.service.OpenAttachment(c.UserContext(), caller(c), id)
	if err != nil {
		return respondError(c, h.logger, "attachment_download_failed", err)
	}

	contentType := a.FileType
	if contentType == "" {
		contentType = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": a.FileName}))
	// The stream is closed by fasthttp once the body is written.
	return c.SendStream(rc, int(a.FileSize))
}

func (h *AttachmentHandler) DeleteAttachment(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid attachment id")
	}
	if err := h.service.DeleteAttachment(c.UserContext(), caller(c), id); err != nil {
		return respondError(c, h.logger, "attachment_delete_failed", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
