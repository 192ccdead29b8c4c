package handlers

import (
	"net/http"

	"venuebook/models"
	"venuebook/services/availability"
	"venuebook/services/booking"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler serves reservations and availability queries.
type BookingHandler struct {
	BookingSvc      booking.BookingService
	AvailabilitySvc availability.AvailabilityService
	Logger          *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingSvc booking.BookingService, availabilitySvc availability.AvailabilityService, logger *zap.Logger) *BookingHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingHandler{
		BookingSvc:      bookingSvc,
		AvailabilitySvc: availabilitySvc,
		Logger:          logger,
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		respondError(c, h.Logger, "CreateBooking", err)
		return
	}

	b, err := h.BookingSvc.CreateBooking(c.Request.Context(), req.VenueID, req.Guest, date)
	if err != nil {
		respondError(c, h.Logger, "CreateBooking", err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBooking handles GET /api/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.BookingSvc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, "GetBooking", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBookingsByPhone handles GET /api/bookings?phone=.
func (h *BookingHandler) ListBookingsByPhone(c *gin.Context) {
	bookings, err := h.BookingSvc.ListBookingsByPhone(c.Request.Context(), c.Query("phone"))
	if err != nil {
		respondError(c, h.Logger, "ListBookingsByPhone", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ListUnavailableDates handles GET /api/venues/:venueId/unavailable-dates.
func (h *BookingHandler) ListUnavailableDates(c *gin.Context) {
	venueID := c.Param("venueId")
	dates, err := h.AvailabilitySvc.ListUnavailableDates(c.Request.Context(), venueID)
	if err != nil {
		respondError(c, h.Logger, "ListUnavailableDates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"venue_id": venueID, "unavailable_dates": dates})
}

// CheckAvailability handles GET /api/venues/:venueId/availability?date=.
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	venueID := c.Param("venueId")
	date, err := models.ParseDate(c.Query("date"))
	if err != nil {
		respondError(c, h.Logger, "CheckAvailability", err)
		return
	}
	ok, err := h.AvailabilitySvc.IsAvailable(c.Request.Context(), venueID, date)
	if err != nil {
		respondError(c, h.Logger, "CheckAvailability", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"venue_id": venueID, "date": date, "available": ok})
}
