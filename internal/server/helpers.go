package server

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"livefeed/internal/models"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 422 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid post ID."))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parseVersion reads the optimistic concurrency version from the form.
// Same response contract as parseID.
func (s *Server) parseVersion(c *fiber.Ctx) (int, error) {
	raw := c.FormValue("version")
	if raw == "" {
		_ = models.RespondWithError(c, models.NewValidationError("Validation failed.", models.FieldViolation{
			Field:   "version",
			Message: "Version is required.",
		}))
		return 0, errResponseWritten
	}

	version, err := strconv.Atoi(raw)
	if err != nil || version < 0 {
		_ = models.RespondWithError(c, models.NewValidationError("Validation failed.", models.FieldViolation{
			Field:   "version",
			Message: "Version must be a non-negative integer.",
		}))
		return 0, errResponseWritten
	}
	return version, nil
}
