package devapi

import (
	"errors"
	"log/slog"

	"agora/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil, not this error.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// respondWithError writes the standard error body.
func respondWithError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(models.ErrorResponse{
		Success: false,
		Message: message,
	})
}

// errorHandler turns errors returned from handlers into the standard body.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return respondWithError(c, fe.Code, fe.Message)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return respondWithError(c, fiber.StatusNotFound, "Resource not found")
	}
	s.logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
	return respondWithError(c, fiber.StatusInternalServerError, "Internal server error")
}

// parseID extracts a route parameter by name as a positive id.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = respondWithError(c, fiber.StatusBadRequest, "Invalid ID")
		return 0, errResponseWritten
	}
	return int64(id), nil
}

// parsePage reads zero-based page and size query parameters.
func parsePage(c *fiber.Ctx) (page, size int) {
	page = c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}
	size = c.QueryInt("size", defaultPageSize)
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}

// currentUserID returns the id set by AuthRequired.
func currentUserID(c *fiber.Ctx) int64 {
	id, _ := c.Locals("userID").(int64)
	return id
}
