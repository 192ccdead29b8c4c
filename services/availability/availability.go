package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	bookingRepo "venuebook/database/repository/booking"
	"venuebook/models"
	"venuebook/utils"
)

// AvailabilityService answers which dates a venue can still be booked on.
type AvailabilityService interface {
	ListUnavailableDates(ctx context.Context, venueID string) ([]models.Date, error)
	IsAvailable(ctx context.Context, venueID string, date models.Date) (bool, error)
}

// DefaultAvailabilityService queries the booking repository directly; it keeps
// no index of its own.
type DefaultAvailabilityService struct {
	Repo     bookingRepo.BookingRepository
	Clock    utils.Clock
	Location *time.Location
}

func NewDefaultAvailabilityService(repo bookingRepo.BookingRepository, clock utils.Clock, loc *time.Location) (*DefaultAvailabilityService, error) {
	if repo == nil || clock == nil {
		return nil, fmt.Errorf("availability service initialization error: repository or clock is nil")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DefaultAvailabilityService{Repo: repo, Clock: clock, Location: loc}, nil
}

// Today is the current calendar day in the reference time zone.
func (s *DefaultAvailabilityService) Today() models.Date {
	return models.DateOf(s.Clock.Now(), s.Location)
}

// ListUnavailableDates returns the dates held by active bookings, ascending.
// A venue with no bookings yields an empty slice.
func (s *DefaultAvailabilityService) ListUnavailableDates(ctx context.Context, venueID string) ([]models.Date, error) {
	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return nil, fmt.Errorf("%w: venue id is required", models.ErrInvalidInput)
	}
	dates, err := s.Repo.ActiveDates(ctx, venueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list unavailable dates: %w", err)
	}
	if dates == nil {
		dates = []models.Date{}
	}
	return dates, nil
}

// IsAvailable is false for past dates regardless of bookings.
func (s *DefaultAvailabilityService) IsAvailable(ctx context.Context, venueID string, date models.Date) (bool, error) {
	venueID = strings.TrimSpace(venueID)
	if venueID == "" {
		return false, fmt.Errorf("%w: venue id is required", models.ErrInvalidInput)
	}
	if date.Before(s.Today()) {
		return false, nil
	}
	taken, err := s.Repo.HasActive(ctx, venueID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return !taken, nil
}
