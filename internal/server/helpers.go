package server

import (
	"friendnet/internal/models"

	"github.com/gofiber/fiber/v2"
)

const maxPaginationLimit = 100

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{Limit: limit, Offset: offset}
}

// currentUserID returns the authenticated caller's id set by the auth middleware.
func currentUserID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// respond writes a success envelope with the given status.
func respond(c *fiber.Ctx, status int, message string, detail any) error {
	isAuthenticated := c.Locals("userID") != nil
	return c.Status(status).JSON(models.NewEnvelope(isAuthenticated, message, detail, nil))
}

// respondError delegates to the envelope error writer.
func respondError(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, err)
}

// sendBadRequest is the generic malformed-body error for friend routes.
func sendBadRequest() error {
	return models.NewValidationError("Bad Request")
}
