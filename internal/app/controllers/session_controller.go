package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/app/services"
	"github.com/studymate/backend/internal/middleware"
)

// SessionController handles study session operations
type SessionController struct {
	sessionService     *services.SessionService
	participantService *services.ParticipantService
}

// NewSessionController creates a new SessionController
func NewSessionController(sessionService *services.SessionService, participantService *services.ParticipantService) *SessionController {
	return &SessionController{
		sessionService:     sessionService,
		participantService: participantService,
	}
}

// CreateSession godoc
// @Summary Create a study session
// @Description The caller becomes the creator and first participant
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateSessionRequest true "Session details"
// @Success 201 {object} dto.APIResponse{data=dto.SessionResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Router /sessions/ [post]
func (c *SessionController) CreateSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	session, err := c.sessionService.CreateSession(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(session, "Study session created successfully"))
}

// GetSession godoc
// @Summary Get a study session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid session ID"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id} [get]
func (c *SessionController) GetSession(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	session, err := c.sessionService.GetSession(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session, ""))
}

// ListSessions godoc
// @Summary List sessions at the caller's school
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param course_code query string false "Exact course code"
// @Param meeting_type query string false "on_campus, off_campus or online"
// @Param exclude_full query bool false "Hide full sessions"
// @Success 200 {object} dto.APIResponse{data=[]dto.SessionResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /sessions/ [get]
func (c *SessionController) ListSessions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	var req dto.SessionFilterRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	sessions, err := c.sessionService.ListSchoolSessions(ctx.Request.Context(), userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sessions, ""))
}

// ListMySessions godoc
// @Summary List sessions the caller created or joined
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.SessionResponse}
// @Router /sessions/my/sessions [get]
func (c *SessionController) ListMySessions(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	sessions, err := c.sessionService.ListMySessions(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(sessions, ""))
}

// UpdateSession godoc
// @Summary Update a study session
// @Description Creator only. max_capacity cannot drop below the current participant count.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Param request body dto.UpdateSessionRequest true "Fields to change"
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Capacity below participant count"
// @Router /sessions/{id} [patch]
func (c *SessionController) UpdateSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.UpdateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	session, err := c.sessionService.UpdateSession(ctx.Request.Context(), id, userID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session, "Study session updated successfully"))
}

// DeleteSession godoc
// @Summary Delete a study session
// @Description Creator only. Removes the roster and chat as well.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the creator"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id} [delete]
func (c *SessionController) DeleteSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.sessionService.DeleteSession(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Study session deleted successfully"))
}

// JoinSession godoc
// @Summary Join a study session
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=dto.SessionResponse}
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Failure 409 {object} dto.ErrorResponse "Already joined or session full"
// @Router /sessions/{id}/join [post]
func (c *SessionController) JoinSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	session, err := c.participantService.JoinSession(ctx.Request.Context(), id, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(session, "Joined study session"))
}

// LeaveSession godoc
// @Summary Leave a study session
// @Description Succeeds when the caller was not a participant. The creator cannot leave.
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse
// @Failure 400 {object} dto.ErrorResponse "Creator cannot leave"
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id}/leave [post]
func (c *SessionController) LeaveSession(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.participantService.LeaveSession(ctx.Request.Context(), id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Left study session"))
}

// ListParticipants godoc
// @Summary List a session's participants
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID" Format(uuid)
// @Success 200 {object} dto.APIResponse{data=[]dto.ParticipantResponse}
// @Failure 404 {object} dto.ErrorResponse "Session not found"
// @Router /sessions/{id}/participants [get]
func (c *SessionController) ListParticipants(ctx *gin.Context) {
	id, ok := uuidParam(ctx, "id")
	if !ok {
		return
	}

	participants, err := c.participantService.ListParticipants(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(participants, ""))
}
