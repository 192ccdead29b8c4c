// File: venuebook/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Booking endpoints
	CreateBookingHandler       gin.HandlerFunc
	GetBookingHandler          gin.HandlerFunc
	ListBookingsByPhoneHandler gin.HandlerFunc

	// Availability endpoints
	ListUnavailableDatesHandler gin.HandlerFunc
	CheckAvailabilityHandler    gin.HandlerFunc

	// Cancellation endpoints
	RequestCancellationHandler gin.HandlerFunc
	ConfirmCancellationHandler gin.HandlerFunc

	// Admin endpoints
	AdminHandler *AdminHandler

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the handlers into a bundle.
func NewHandlerBundle(bh *BookingHandler, ch *CancellationHandler, ah *AdminHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateBookingHandler:        bh.CreateBooking,
		GetBookingHandler:           bh.GetBooking,
		ListBookingsByPhoneHandler:  bh.ListBookingsByPhone,
		ListUnavailableDatesHandler: bh.ListUnavailableDates,
		CheckAvailabilityHandler:    bh.CheckAvailability,
		RequestCancellationHandler:  ch.RequestCancellation,
		ConfirmCancellationHandler:  ch.ConfirmCancellation,
		AdminHandler:                ah,
		HealthHandler:               HealthHandler,
	}
}
