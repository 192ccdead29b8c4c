package handlers

import (
	"errors"
	"net/http"

	"venuebook/models"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps a service error onto an HTTP status and message. Expired
// and mismatched codes share one message so callers cannot tell them apart.
func respondError(c *gin.Context, logger *zap.Logger, op string, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.Is(err, models.ErrInvalidDate):
		utils.JSONError(c, http.StatusUnprocessableEntity, "date is in the past", err.Error())
	case errors.Is(err, models.ErrCapacityExceeded):
		utils.JSONError(c, http.StatusUnprocessableEntity, "guest count exceeds venue capacity", err.Error())
	case errors.Is(err, models.ErrConflict):
		utils.JSONError(c, http.StatusConflict, "date unavailable", "")
	case errors.Is(err, models.ErrExpired), errors.Is(err, models.ErrMismatch):
		utils.JSONError(c, http.StatusUnauthorized, "invalid or expired code", "")
	case errors.Is(err, models.ErrPhoneMismatch):
		utils.JSONError(c, http.StatusForbidden, "phone number does not match booking", "")
	case errors.Is(err, models.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, models.ErrInvalidTransition):
		utils.JSONError(c, http.StatusConflict, "invalid status transition", err.Error())
	case errors.Is(err, models.ErrDeliveryFailed):
		utils.JSONError(c, http.StatusBadGateway, "could not deliver verification code", "")
	default:
		logger.Error(op+": unexpected error", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal server error", "")
	}
}
