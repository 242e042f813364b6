package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/studymate/backend/internal/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorDetail {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	return resp.Error
}

func serveError(err error) *httptest.ResponseRecorder {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/fail", func(c *gin.Context) {
		HandleAPIError(c, err)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	return w
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
		field   string
	}{
		{"validation", apperrors.NewValidationError("max_capacity", "max_capacity must be greater than 0"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "max_capacity must be greater than 0", "max_capacity"},
		{"creator leave", apperrors.ErrCreatorCannotLeave, http.StatusBadRequest, dto.ErrorCodeBadRequest, "Creator cannot leave their own session", ""},
		{"login", apperrors.ErrLoginFailed, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password", ""},
		{"not participant", apperrors.ErrNotParticipant, http.StatusForbidden, dto.ErrorCodeForbidden, "You must join the session to use its chat", ""},
		{"wrapped not found", fmt.Errorf("loading: %w", apperrors.ErrSessionNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Study session not found", ""},
		{"full", apperrors.ErrSessionFull, http.StatusConflict, dto.ErrorCodeConflict, "Session is full", ""},
		{"bare kind", apperrors.ErrConflict, http.StatusConflict, dto.ErrorCodeConflict, "Conflict", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveError(tt.err)
			assert.Equal(t, tt.status, w.Code)

			detail := decodeError(t, w)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, tt.message, detail.Message)
			assert.Equal(t, tt.field, detail.Field)
			assert.Equal(t, dto.ErrorSeverityWarning, detail.Severity)
		})
	}
}

func TestHandleAPIError_UnknownIsRedacted(t *testing.T) {
	w := serveError(errors.New("pq: connection refused on 10.0.0.3"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	detail := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeInternalServer, detail.Code)
	assert.Equal(t, "Internal server error", detail.Message)
	assert.Equal(t, dto.ErrorSeverityCritical, detail.Severity)
	assert.NotContains(t, w.Body.String(), "10.0.0.3")
}

func newJWT(exp time.Duration) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: exp, TokenIssuer: "studymate"})
}

func protectedRouter(m *AuthMiddleware, allowQuery bool) *gin.Engine {
	router := gin.New()
	router.GET("/me", m.JWTAuth(allowQuery), func(c *gin.Context) {
		user, ok := GetCurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, user.ID.String())
	})
	return router
}

func TestJWTAuth(t *testing.T) {
	jwtService := newJWT(time.Hour)
	userID := uuid.New()
	token, _, err := jwtService.GenerateAccessToken(userID, "alice@school.edu")
	require.NoError(t, err)

	expired, _, err := newJWT(-time.Minute).GenerateAccessToken(userID, "alice@school.edu")
	require.NoError(t, err)

	tests := []struct {
		name       string
		allowQuery bool
		header     string
		query      string
		status     int
		code       dto.ErrorCode
	}{
		{name: "bearer header", header: "Bearer " + token, status: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + token, status: http.StatusOK},
		{name: "missing", status: http.StatusUnauthorized, code: dto.ErrorCodeUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: dto.ErrorCodeInvalidToken},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized, code: dto.ErrorCodeInvalidToken},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized, code: dto.ErrorCodeExpiredToken},
		{name: "query ignored on plain routes", query: token, status: http.StatusUnauthorized, code: dto.ErrorCodeUnauthorized},
		{name: "query accepted when allowed", allowQuery: true, query: token, status: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := protectedRouter(NewAuthMiddleware(jwtService), tt.allowQuery)

			target := "/me"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
				return
			}
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
			assert.Equal(t, tt.code, decodeError(t, w).Code)
		})
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	other := auth.NewJWTService(auth.JWTConfig{SecretKey: "other-secret", AccessTokenExp: time.Hour})
	token, _, err := other.GenerateAccessToken(uuid.New(), "alice@school.edu")
	require.NoError(t, err)

	router := protectedRouter(NewAuthMiddleware(newJWT(time.Hour)), false)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Code)
}

func TestRateLimitByIP(t *testing.T) {
	router := gin.New()
	router.POST("/auth/login", RateLimitByIP(NewIPRateLimiter(60, 2, time.Minute)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, send("10.0.0.1").Code)

	w := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Equal(t, dto.ErrorCodeRateLimited, decodeError(t, w).Code)

	assert.Equal(t, http.StatusOK, send("10.0.0.2").Code)
}

func TestRateLimitByIP_Disabled(t *testing.T) {
	for _, rl := range []*IPRateLimiter{nil, NewIPRateLimiter(0, 0, time.Minute)} {
		router := gin.New()
		router.GET("/x", RateLimitByIP(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 5; i++ {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	}
}

type bindTarget struct {
	Title       string `json:"title" binding:"required"`
	MaxCapacity int    `json:"max_capacity" binding:"gt=0"`
}

func TestHandleBindError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"missing field", `{"max_capacity": 3}`, "title", "title is required"},
		{"rule uses json name", `{"title": "x", "max_capacity": 0}`, "max_capacity", "max_capacity must be greater than 0"},
		{"wrong type", `{"title": "x", "max_capacity": "three"}`, "max_capacity", "max_capacity has the wrong type"},
		{"malformed", `{"title": `, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/bind", func(c *gin.Context) {
				var req bindTarget
				if err := c.ShouldBindJSON(&req); err != nil {
					HandleBindError(c, err)
					return
				}
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/bind", strings.NewReader(tt.body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)

			detail := decodeError(t, w)
			assert.Equal(t, dto.ErrorCodeValidationFailed, detail.Code)
			assert.Equal(t, tt.field, detail.Field)
			if tt.message != "" {
				assert.Equal(t, tt.message, detail.Message)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get("X-Request-ID")
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}
