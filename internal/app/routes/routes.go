package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/studymate/backend/internal/app/controllers"
	"github.com/studymate/backend/internal/middleware"
)

// Handlers groups the controllers and middleware the routes are bound to
type Handlers struct {
	Auth           *controllers.AuthController
	User           *controllers.UserController
	Session        *controllers.SessionController
	Chat           *controllers.ChatController
	Health         *controllers.HealthController
	AuthMiddleware *middleware.AuthMiddleware
	AuthLimiter    *middleware.IPRateLimiter
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h *Handlers) {
	// --- Public routes ---
	router.GET("/health", h.Health.Health)
	router.GET("/ping", h.Health.Ping)

	auth := router.Group("/auth")
	auth.Use(middleware.RateLimitByIP(h.AuthLimiter))
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	// --- Authenticated routes ---
	authenticated := router.Group("")
	authenticated.Use(h.AuthMiddleware.JWTAuth(false))

	users := authenticated.Group("/users")
	{
		users.GET("/me", h.User.GetProfile)
		users.PATCH("/me", h.User.UpdateProfile)
	}

	sessions := authenticated.Group("/sessions")
	{
		// Both spellings are served without a redirect
		sessions.POST("", h.Session.CreateSession)
		sessions.POST("/", h.Session.CreateSession)
		sessions.GET("", h.Session.ListSessions)
		sessions.GET("/", h.Session.ListSessions)
		sessions.GET("/my/sessions", h.Session.ListMySessions)

		sessions.GET("/:id", h.Session.GetSession)
		sessions.PATCH("/:id", h.Session.UpdateSession)
		sessions.DELETE("/:id", h.Session.DeleteSession)

		sessions.POST("/:id/join", h.Session.JoinSession)
		sessions.POST("/:id/leave", h.Session.LeaveSession)
		sessions.GET("/:id/participants", h.Session.ListParticipants)
	}

	chat := authenticated.Group("/chat")
	{
		chat.POST("/:session_id/messages", h.Chat.PostMessage)
		chat.GET("/:session_id/messages", h.Chat.ListMessages)
		chat.DELETE("/messages/:message_id", h.Chat.DeleteMessage)
	}

	// Browsers cannot set headers on the handshake, so the token may come in the query
	live := router.Group("/chat")
	live.Use(h.AuthMiddleware.JWTAuth(true))
	live.GET("/:session_id/ws", h.Chat.Subscribe)
}
