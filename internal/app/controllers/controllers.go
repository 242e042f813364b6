// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/studymate/backend/internal/app/models/dto"
	"github.com/studymate/backend/internal/middleware"
)

// currentUserID returns the authenticated caller or writes a 401
func currentUserID(ctx *gin.Context) (uuid.UUID, bool) {
	user, ok := middleware.GetCurrentUser(ctx)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")))
		return uuid.Nil, false
	}
	return user.ID, true
}

// uuidParam parses a path parameter or writes a 400
func uuidParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid "+name).
				WithField(name).
				WithSeverity(dto.ErrorSeverityWarning)))
		return uuid.Nil, false
	}
	return id, true
}
