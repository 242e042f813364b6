package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/app/services"
	"github.com/studymate/backend/internal/middleware"
	"github.com/studymate/backend/internal/pkg/helpers"
	"github.com/studymate/backend/internal/pkg/websocket"
)

// ChatController handles chat message operations
type ChatController struct {
	chatService  *services.ChatService
	hub          *websocket.Hub
	upgrader     gorillaws.Upgrader
	defaultLimit int
	maxLimit     int
	logger       zerolog.Logger
}

// NewChatController creates a new ChatController. hub may be nil, which
// disables the live endpoint.
func NewChatController(
	chatService *services.ChatService,
	hub *websocket.Hub,
	upgrader gorillaws.Upgrader,
	defaultLimit, maxLimit int,
	logger zerolog.Logger,
) *ChatController {
	return &ChatController{
		chatService:  chatService,
		hub:          hub,
		upgrader:     upgrader,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		logger:       logger,
	}
}

// PostMessage godoc
// @Summary Post a chat message
// @Description Only participants of the session may post
// @Tags chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID" Format(uuid)
// @Param request body dto.CreateMessageRequest true "Message"
// @Success 201 {object} dto.APIResponse{data=dto.MessageResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid message"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /chat/{session_id}/messages [post]
func (c *ChatController) PostMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(ctx, "session_id")
	if !ok {
		return
	}

	var req dto.CreateMessageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	if req.SessionID != nil && *req.SessionID != sessionID {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeBadRequest, "session_id in body does not match the path").
				WithField("session_id").
				WithSeverity(dto.ErrorSeverityWarning)))
		return
	}

	message, err := c.chatService.PostMessage(ctx.Request.Context(), sessionID, userID, req.Message)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(message, "Message sent"))
}

// ListMessages godoc
// @Summary List a session's chat messages
// @Description Oldest first
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param session_id path string true "Session ID" Format(uuid)
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Messages to skip" default(0)
// @Success 200 {object} dto.APIResponse{data=dto.MessageListResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid limit or offset"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /chat/{session_id}/messages [get]
func (c *ChatController) ListMessages(ctx *gin.Context) {
	sessionID, ok := uuidParam(ctx, "session_id")
	if !ok {
		return
	}

	limit, offset, err := helpers.ParseLimitOffset(ctx, c.defaultLimit, c.maxLimit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	messages, err := c.chatService.ListMessages(ctx.Request.Context(), sessionID, limit, offset)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(messages, ""))
}

// DeleteMessage godoc
// @Summary Delete a chat message
// @Description Authors only
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param message_id path string true "Message ID" Format(uuid)
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the author"
// @Failure 404 {object} dto.ErrorResponse "Message not found"
// @Router /chat/messages/{message_id} [delete]
func (c *ChatController) DeleteMessage(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	messageID, ok := uuidParam(ctx, "message_id")
	if !ok {
		return
	}

	if err := c.chatService.DeleteMessage(ctx.Request.Context(), messageID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Message deleted"))
}

// Subscribe godoc
// @Summary Follow a session's chat live
// @Description Upgrades to a WebSocket that receives message.created and message.deleted events. Participants only. The token may be passed as a query parameter.
// @Tags chat
// @Security BearerAuth
// @Param session_id path string true "Session ID" Format(uuid)
// @Param token query string false "Access token"
// @Success 101 "Switching protocols"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /chat/{session_id}/ws [get]
func (c *ChatController) Subscribe(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	sessionID, ok := uuidParam(ctx, "session_id")
	if !ok {
		return
	}

	if c.hub == nil {
		ctx.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Live chat is not available")))
		return
	}

	if err := c.chatService.AuthorizeSubscription(ctx.Request.Context(), sessionID, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	// The upgrader writes its own error response on failure
	if err := c.hub.Serve(&c.upgrader, ctx.Writer, ctx.Request, sessionID, userID); err != nil {
		c.logger.Warn().Err(err).Str("sessionID", sessionID.String()).Msg("WebSocket upgrade failed")
		return
	}
}
