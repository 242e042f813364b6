package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/studymate/backend/internal/app/controllers"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/middleware"
	"github.com/studymate/backend/internal/pkg/auth"
	"github.com/studymate/backend/internal/pkg/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// Services stay nil: every request below is answered before a service is reached.
func newTestRouter(t *testing.T, pinger controllers.Pinger) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-secret", AccessTokenExp: time.Hour})
	router := gin.New()
	SetupRouter(router, &Handlers{
		Auth:           controllers.NewAuthController(nil, zerolog.Nop()),
		User:           controllers.NewUserController(nil),
		Session:        controllers.NewSessionController(nil, nil),
		Chat:           controllers.NewChatController(nil, nil, websocket.NewUpgrader(nil), 50, 100, zerolog.Nop()),
		Health:         controllers.NewHealthController(pinger),
		AuthMiddleware: middleware.NewAuthMiddleware(jwtService),
	})
	return router, jwtService
}

func TestPing(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name   string
		pinger controllers.Pinger
		status int
		want   string
	}{
		{"database up", stubPinger{}, http.StatusOK, "ok"},
		{"database down", stubPinger{err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, tt.pinger)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, tt.status, w.Code)

			var resp struct {
				Success bool               `json:"success"`
				Data    dto.HealthResponse `json:"data"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.want, resp.Data.Status)
			assert.Equal(t, tt.status == http.StatusOK, resp.Success)
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, nil)
	sessionID := uuid.NewString()

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/users/me"},
		{http.MethodGet, "/sessions"},
		{http.MethodGet, "/sessions/"},
		{http.MethodPost, "/sessions/" + sessionID + "/join"},
		{http.MethodGet, "/chat/" + sessionID + "/messages"},
		{http.MethodGet, "/chat/" + sessionID + "/ws"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(r.method, r.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
	}
}

func TestPostMessage_SessionMismatch(t *testing.T) {
	router, jwtService := newTestRouter(t, nil)
	token, _, err := jwtService.GenerateAccessToken(uuid.New(), "alice@school.edu")
	require.NoError(t, err)

	body := `{"session_id":"` + uuid.NewString() + `","message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/chat/"+uuid.NewString()+"/messages", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeBadRequest, resp.Error.Code)
	assert.Equal(t, "session_id", resp.Error.Field)
}

func TestInvalidSessionID(t *testing.T) {
	router, jwtService := newTestRouter(t, nil)
	token, _, err := jwtService.GenerateAccessToken(uuid.New(), "alice@school.edu")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/sessions/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLiveChatDisabledWithoutHub(t *testing.T) {
	router, jwtService := newTestRouter(t, nil)
	token, _, err := jwtService.GenerateAccessToken(uuid.New(), "alice@school.edu")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chat/"+uuid.NewString()+"/ws?token="+token, nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRegister_OverlongPasswordIsBadRequest(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	body := `{"email":"alice@school.edu","password":"` + strings.Repeat("x", 80) +
		`","first_name":"Alice","last_name":"Smith","school":"State"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeValidationFailed, resp.Error.Code)
	assert.Equal(t, "password", resp.Error.Field)
}
