package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/taskboard/backend/internal/core/ports"
	"github.com/taskboard/backend/internal/core/services"
	"github.com/taskboard/backend/internal/domain"
	"github.com/taskboard/backend/internal/infrastructure/logger"
	"github.com/taskboard/backend/internal/transport/http/dto"
	httpmw "github.com/taskboard/backend/internal/transport/http/middleware"
)

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrUnauthorized):
		return fiber.StatusForbidden
	case errors.Is(err, services.ErrInvalidReference), errors.Is(err, services.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func respondError(c *fiber.Ctx, log *logger.Logger, event string, err error) error {
	code := StatusFor(err)
	if code == fiber.StatusInternalServerError {
		log.Errorw(event, "error", err, "request_id", httpmw.RequestIDFrom(c))
		return c.Status(code).JSON(dto.ErrorResponse{Error: "internal server error"})
	}
	log.Warnw(event, "status", code, "error", err, "request_id", httpmw.RequestIDFrom(c))
	return c.Status(code).JSON(dto.ErrorResponse{Error: err.Error()})
}

func badRequest(c *fiber.Ctx, msg string, details ...string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: msg, Details: details})
}

func parseID(c *fiber.Ctx, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pageRequest reads zero-based ?page and ?size; the services clamp the values.
func pageRequest(c *fiber.Ctx) ports.PageRequest {
	return ports.PageRequest{
		Page: c.QueryInt("page", 0),
		Size: c.QueryInt("size", 0),
	}
}

// caller is only called behind httpmw.Authenticate.
func caller(c *fiber.Ctx) domain.Caller {
	cl, _ := httpmw.CallerFrom(c)
	return cl
}
