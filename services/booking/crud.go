package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"venuebook/models"
	"venuebook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// normalizeGuest trims the guest fields and canonicalizes the phone number.
func normalizeGuest(guest models.GuestInfo) (models.GuestInfo, error) {
	guest.FirstName = strings.TrimSpace(guest.FirstName)
	guest.LastName = strings.TrimSpace(guest.LastName)
	guest.Phone = utils.NormalizePhone(guest.Phone)

	switch {
	case guest.FirstName == "":
		return guest, fmt.Errorf("%w: guest first name is required", models.ErrInvalidInput)
	case guest.LastName == "":
		return guest, fmt.Errorf("%w: guest last name is required", models.ErrInvalidInput)
	case strings.Trim(guest.Phone, "+") == "":
		return guest, fmt.Errorf("%w: guest phone is required", models.ErrInvalidInput)
	case guest.Count <= 0:
		return guest, fmt.Errorf("%w: guest count must be positive", models.ErrInvalidInput)
	}
	return guest, nil
}

// CreateBooking validates the request, checks the date and venue capacity and
// then inserts the booking. The repository insert is the atomic
// check-and-reserve; nothing is written when any earlier step fails.
func (s *DefaultBookingService) CreateBooking(ctx context.Context, venueID string, guest models.GuestInfo, date models.Date) (*models.Booking, error) {
	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return nil, fmt.Errorf("%w: venue id is required", models.ErrInvalidInput)
	}
	guest, err := normalizeGuest(guest)
	if err != nil {
		return nil, err
	}
	date, err = models.ParseDate(string(date))
	if err != nil {
		return nil, err
	}

	if today := s.today(); date.Before(today) {
		return nil, fmt.Errorf("%w: %s is before %s", models.ErrInvalidDate, date, today)
	}

	capacity, err := s.Venues.GetCapacity(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up venue %s: %w", venueID, err)
	}
	if guest.Count > capacity {
		return nil, fmt.Errorf("%w: %d guests, venue %s holds %d", models.ErrCapacityExceeded, guest.Count, venueID, capacity)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate booking id: %w", err)
	}
	now := s.Clock.Now()
	booking := &models.Booking{
		ID:             id.String(),
		VenueID:        venueID,
		GuestFirstName: guest.FirstName,
		GuestLastName:  guest.LastName,
		GuestPhone:     guest.Phone,
		GuestCount:     guest.Count,
		Date:           date,
		Status:         s.InitialStatus,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.Repo.Insert(ctx, booking); err != nil {
		if errors.Is(err, models.ErrConflict) {
			s.Logger.Info("Booking rejected, date unavailable",
				zap.String("venue_id", venueID), zap.String("date", date.String()))
		}
		return nil, err
	}

	s.Logger.Info("Booking created",
		zap.String("booking_id", booking.ID),
		zap.String("venue_id", venueID),
		zap.String("date", date.String()),
		zap.String("status", string(booking.Status)))
	return booking, nil
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: booking id is required", models.ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, id)
}

// ListBookingsByPhone returns every booking made with phone, newest first.
func (s *DefaultBookingService) ListBookingsByPhone(ctx context.Context, phone string) ([]models.Booking, error) {
	phone = utils.NormalizePhone(phone)
	if strings.Trim(phone, "+") == "" {
		return nil, fmt.Errorf("%w: phone is required", models.ErrInvalidInput)
	}
	return s.Repo.ListByPhone(ctx, phone)
}

func (s *DefaultBookingService) ListBookingsByVenue(ctx context.Context, venueID string) ([]models.Booking, error) {
	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return nil, fmt.Errorf("%w: venue id is required", models.ErrInvalidInput)
	}
	return s.Repo.ListByVenue(ctx, venueID)
}
