// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"time"

	"venuebook/models"
)

// BookingRepository is the system of record for bookings.
//
// Insert is the only write that can occupy a venue date and must perform the
// availability check and the insert as one atomic step: when an active
// booking already holds (VenueID, Date) it fails with models.ErrConflict.
type BookingRepository interface {
	Insert(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByPhone(ctx context.Context, phone string) ([]models.Booking, error)
	ListByVenue(ctx context.Context, venueID string) ([]models.Booking, error)
	// ActiveDates returns the distinct dates held by active bookings, ascending.
	ActiveDates(ctx context.Context, venueID string) ([]models.Date, error)
	HasActive(ctx context.Context, venueID string, date models.Date) (bool, error)
	// UpdateStatus moves a booking to next if the transition is allowed from its
	// current status, as a single compare-and-set.
	UpdateStatus(ctx context.Context, id string, next models.BookingStatus, at time.Time) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
	EnsureIndexes(ctx context.Context) error
}
