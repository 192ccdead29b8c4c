package handlers

import (
	"net/http"

	"venuebook/models"
	"venuebook/services/cancellation"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CancellationHandler exposes the two-step guest cancellation.
type CancellationHandler struct {
	Svc    cancellation.CancellationService
	Logger *zap.Logger
}

// NewCancellationHandler creates a new CancellationHandler.
func NewCancellationHandler(svc cancellation.CancellationService, logger *zap.Logger) *CancellationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CancellationHandler{Svc: svc, Logger: logger}
}

// RequestCancellation handles POST /api/bookings/:id/cancellation.
func (h *CancellationHandler) RequestCancellation(c *gin.Context) {
	var input models.RequestCancellationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	ticket, err := h.Svc.RequestCancellation(c.Request.Context(), c.Param("id"), input.Phone)
	if err != nil {
		respondError(c, h.Logger, "RequestCancellation", err)
		return
	}
	c.JSON(http.StatusAccepted, ticket)
}

// ConfirmCancellation handles POST /api/bookings/:id/cancellation/confirm.
func (h *CancellationHandler) ConfirmCancellation(c *gin.Context) {
	var input models.ConfirmCancellationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	b, err := h.Svc.ConfirmCancellation(c.Request.Context(), c.Param("id"), input.Phone, input.Code)
	if err != nil {
		respondError(c, h.Logger, "ConfirmCancellation", err)
		return
	}
	c.JSON(http.StatusOK, b)
}
