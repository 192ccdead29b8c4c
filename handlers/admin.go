// File: venuebook/handlers/admin.go
package handlers

import (
	"net/http"

	"venuebook/models"
	"venuebook/services/booking"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminHandler encapsulates elevated admin-level operations. Callers are
// authenticated by the admin middleware before reaching it.
type AdminHandler struct {
	BookingSvc booking.BookingService
	Logger     *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bs booking.BookingService, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{BookingSvc: bs, Logger: logger}
}

// ListVenueBookingsHandler returns every booking of a venue, any status.
func (ah *AdminHandler) ListVenueBookingsHandler(c *gin.Context) {
	bookings, err := ah.BookingSvc.ListBookingsByVenue(c.Request.Context(), c.Param("venueId"))
	if err != nil {
		respondError(c, ah.Logger, "ListVenueBookings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// UpdateStatusHandler applies a status transition without code verification.
func (ah *AdminHandler) UpdateStatusHandler(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	status, err := models.ParseBookingStatus(req.Status)
	if err != nil {
		respondError(c, ah.Logger, "UpdateStatus", err)
		return
	}

	b, err := ah.BookingSvc.SetStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		respondError(c, ah.Logger, "UpdateStatus", err)
		return
	}
	ah.Logger.Info("Admin changed booking status",
		zap.String("admin_id", c.GetString("adminID")),
		zap.String("booking_id", b.ID),
		zap.String("status", string(b.Status)))
	c.JSON(http.StatusOK, b)
}

// DeleteBookingHandler permanently removes a booking.
func (ah *AdminHandler) DeleteBookingHandler(c *gin.Context) {
	id := c.Param("id")
	if err := ah.BookingSvc.DeleteBooking(c.Request.Context(), id); err != nil {
		respondError(c, ah.Logger, "DeleteBooking", err)
		return
	}
	ah.Logger.Warn("Admin deleted booking",
		zap.String("admin_id", c.GetString("adminID")),
		zap.String("booking_id", id))
	c.JSON(http.StatusOK, gin.H{"message": "booking deleted"})
}
