package helpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/studymate/backend/internal/pkg/apperrors"
)

// ParseLimitOffset reads limit and offset query parameters.
// A missing limit falls back to defaultLimit; values outside 1..maxLimit and
// negative offsets are validation errors rather than silently clamped.
func ParseLimitOffset(c *gin.Context, defaultLimit, maxLimit int) (limit, offset int, err error) {
	limit = defaultLimit
	if raw, ok := c.GetQuery("limit"); ok {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, apperrors.NewValidationError("limit", fmt.Sprintf("limit must be an integer between 1 and %d", maxLimit))
		}
	}

	if raw, ok := c.GetQuery("offset"); ok {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return 0, 0, apperrors.NewValidationError("offset", "offset must be a non-negative integer")
		}
	}

	return limit, offset, nil
}
