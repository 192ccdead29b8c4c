package booking

import (
	"context"

	"venuebook/models"
)

// BookingService is the booking store: it admits reservations against venue
// availability and drives status transitions.
type BookingService interface {
	CreateBooking(ctx context.Context, venueID string, guest models.GuestInfo, date models.Date) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookingsByPhone(ctx context.Context, phone string) ([]models.Booking, error)
	ListBookingsByVenue(ctx context.Context, venueID string) ([]models.Booking, error)
	// SetStatus is the administrative override path; it applies the same
	// transition rules as guest cancellation without any verification.
	SetStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id string) error
}
