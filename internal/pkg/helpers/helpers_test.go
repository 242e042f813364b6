package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestParseLimitOffset(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query      string
		limit      int
		offset     int
		wantErrFor string
	}{
		{query: "", limit: 50, offset: 0},
		{query: "limit=2&offset=4", limit: 2, offset: 4},
		{query: "limit=100", limit: 100, offset: 0},
		{query: "limit=0", wantErrFor: "limit"},
		{query: "limit=101", wantErrFor: "limit"},
		{query: "limit=ten", wantErrFor: "limit"},
		{query: "offset=-1", wantErrFor: "offset"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			limit, offset, err := ParseLimitOffset(c, 50, 100)
			if tt.wantErrFor != "" {
				assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
				var ce *apperrors.CustomError
				if assert.ErrorAs(t, err, &ce) {
					assert.Equal(t, tt.wantErrFor, ce.Details["field"])
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.limit, limit)
			assert.Equal(t, tt.offset, offset)
		})
	}
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 3*time.Second, ParseDuration("3s", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}
