package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/pkg/apperrors"
	"github.com/studymate/backend/internal/pkg/auth"
)

const currentUserKey = "currentUser"

// CurrentUser is the authenticated principal attached to a request
type CurrentUser struct {
	ID    uuid.UUID
	Email string
}

// AuthMiddleware guards routes with bearer tokens
type AuthMiddleware struct {
	jwtService *auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// JWTAuth requires a valid token in the Authorization header. When
// allowQueryToken is set, a "token" query parameter is accepted as well,
// since browsers cannot set headers on WebSocket handshakes.
func (m *AuthMiddleware) JWTAuth(allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		if header := c.GetHeader("Authorization"); header != "" {
			t, err := auth.ExtractBearerToken(header)
			if err != nil {
				abortUnauthorized(c, dto.ErrorCodeInvalidToken, apperrors.Message(err, "Invalid token"))
				return
			}
			tokenString = t
		} else if allowQueryToken {
			tokenString = c.Query("token")
		}

		if tokenString == "" {
			abortUnauthorized(c, dto.ErrorCodeUnauthorized, "Authentication required")
			return
		}

		claims, err := m.jwtService.ValidateAndExtractClaims(tokenString)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			if apperrors.Is(err, apperrors.ErrTokenExpired) {
				code = dto.ErrorCodeExpiredToken
			}
			abortUnauthorized(c, code, apperrors.Message(err, "Invalid token"))
			return
		}

		userID, _ := claims.UserID()
		c.Set(currentUserKey, &CurrentUser{ID: userID, Email: claims.Email})
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, code dto.ErrorCode, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.NewErrorDetail(code, message)))
}

// GetCurrentUser returns the principal set by JWTAuth
func GetCurrentUser(c *gin.Context) (*CurrentUser, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*CurrentUser)
	return user, ok
}
