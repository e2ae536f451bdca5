package response

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/roamio/tripplanner/internal/apperr"
)

type Body struct {
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Error      interface{} `json:"error,omitempty"`
	Page       int         `json:"page,omitempty"`
	TotalCount int64       `json:"totalCount,omitempty"`
	TotalPages int64       `json:"totalPages,omitempty"`
}

func Success(c *fiber.Ctx, data interface{}, message string) error {
	return c.JSON(Body{Message: message, Data: data})
}

func Created(c *fiber.Ctx, data interface{}, message string) error {
	return c.Status(fiber.StatusCreated).JSON(Body{Message: message, Data: data})
}

// Paginated wraps a page of results with the pagination metadata every
// list endpoint returns.
func Paginated(c *fiber.Ctx, data interface{}, message string, page, limit int, total int64) error {
	return c.JSON(Body{
		Message:    message,
		Data:       data,
		Page:       page,
		TotalCount: total,
		TotalPages: TotalPages(total, limit),
	})
}

func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) > 0 {
		pages++
	}
	return pages
}

func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(Body{Message: message})
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(Body{Message: message})
}

func Forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(Body{Message: message})
}

func NotFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(Body{Message: message})
}

func InternalError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(Body{Message: message})
}

// Err is the single error-mapping layer: it translates domain error
// kinds into status codes so handlers never pick codes themselves.
func Err(c *fiber.Ctx, err error) error {
	var e *apperr.Error
	if !errors.As(err, &e) {
		return InternalError(c, "Internal server error")
	}

	body := Body{Message: e.Message, Error: e.Details}

	switch e.Kind {
	case apperr.KindValidation:
		return c.Status(fiber.StatusBadRequest).JSON(body)
	case apperr.KindUnauthorized:
		return c.Status(fiber.StatusUnauthorized).JSON(body)
	case apperr.KindForbidden:
		return c.Status(fiber.StatusForbidden).JSON(body)
	case apperr.KindNotFound:
		return c.Status(fiber.StatusNotFound).JSON(body)
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
