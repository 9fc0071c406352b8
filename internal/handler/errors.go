package handler

import (
	"errors"
	"net/http"

	"governance/internal/service"
	"governance/pkg/apperror"
	"governance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondError maps service errors onto the response envelope.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, err.Error()))
		return
	}
	if appErr, ok := apperror.From(err); ok {
		if appErr.Code == apperror.CodeStorage {
			log.Error("storage failure", zap.String("path", c.FullPath()), zap.Error(err))
		}
		c.JSON(appErr.HTTPStatus(), response.FromAppError(appErr))
		return
	}
	log.Error("unclassified error", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal error"))
}

// bindJSON decodes the body; malformed JSON is reported as a validation error.
func bindJSON(c *gin.Context, log *zap.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, log, apperror.Validation(map[string]string{"body": "invalid JSON payload: " + err.Error()}))
		return false
	}
	return true
}

func pathID(c *gin.Context, log *zap.Logger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, log, apperror.Validation(map[string]string{name: "must be a UUID"}))
		return uuid.Nil, false
	}
	return id, true
}
