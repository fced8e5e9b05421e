package server

import (
	"errors"
	"strings"
	"unicode"

	"zxyspace/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageSize = 10
	maxPageSize     = 100
	defaultFeedSize = 10
	maxFeedSize     = 20
)

// parsePageRequest extracts the shared pagination query parameters. Page is
// zero-based; size is clamped to maxPageSize.
func parsePageRequest(c *fiber.Ctx) models.PageRequest {
	page := c.QueryInt("page", 0)
	if page < 0 {
		page = 0
	}

	size := c.QueryInt("size", defaultPageSize)
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	return models.PageRequest{
		Page:    page,
		Size:    size,
		SortBy:  c.Query("sortBy", "createdAt"),
		SortDir: c.Query("sortDir", "desc"),
	}
}

// parseFeedLimit extracts the limit parameter for the recent/popular feeds,
// clamped to maxFeedSize so feed cache keys stay bounded.
func parseFeedLimit(c *fiber.Ctx) int {
	limit := c.QueryInt("limit", defaultFeedSize)
	if limit <= 0 {
		limit = defaultFeedSize
	}
	if limit > maxFeedSize {
		limit = maxFeedSize
	}
	return limit
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam converts a route param name into a human-readable label.
// Examples: "id" -> "ID", "userId" -> "user ID", "authorId" -> "author ID".
func humanizeParam(param string) string {
	if param == "id" {
		return "ID"
	}
	if strings.HasSuffix(param, "Id") {
		prefix := param[:len(param)-2]
		words := splitCamel(prefix)
		return strings.ToLower(strings.Join(words, " ")) + " ID"
	}
	return param
}

// splitCamel splits a camelCase string into words.
func splitCamel(s string) []string {
	var words []string
	start := 0
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, s[start:i])
			start = i
		}
	}
	words = append(words, s[start:])
	return words
}
