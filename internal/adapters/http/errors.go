package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/muralmap/internal/core/domain"
	"github.com/samirrijal/muralmap/internal/viewer"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// errBadGateway returns a 502 error for unusable upstream documents.
func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, 502, "bad_gateway", msg)
}

// errUnavailable returns a 503 error for unreachable upstreams.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "unavailable", msg)
}

// errTooManyRequests returns a 429 error.
func errTooManyRequests(c *fiber.Ctx, msg string) error {
	return newError(c, 429, "too_many_requests", msg)
}

// domainError maps viewer and domain errors to responses.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrBlobNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrNotLoaded), errors.Is(err, domain.ErrSuperseded):
		return errConflict(c, err.Error())
	case errors.Is(err, domain.ErrMalformedDocument):
		return errBadGateway(c, err.Error())
	case errors.Is(err, domain.ErrFetchFailed):
		return errUnavailable(c, err.Error())
	case errors.Is(err, viewer.ErrTooManySessions):
		return errTooManyRequests(c, err.Error())
	default:
		return errInternal(c, err.Error())
	}
}
