package booking

import (
	"fmt"
	"time"

	bookingRepo "venuebook/database/repository/booking"
	venueRepo "venuebook/database/repository/venue"
	"venuebook/models"
	"venuebook/utils"

	"go.uber.org/zap"
)

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Repo          bookingRepo.BookingRepository
	Venues        venueRepo.VenueDirectory
	Clock         utils.Clock
	Location      *time.Location
	InitialStatus models.BookingStatus
	Logger        *zap.Logger
}

func NewDefaultBookingService(
	repo bookingRepo.BookingRepository,
	venues venueRepo.VenueDirectory,
	clock utils.Clock,
	loc *time.Location,
	initialStatus models.BookingStatus,
	logger *zap.Logger,
) (*DefaultBookingService, error) {
	if repo == nil || venues == nil || clock == nil {
		return nil, fmt.Errorf("booking service initialization error: repository, venue directory or clock is nil")
	}
	if !initialStatus.IsActive() {
		return nil, fmt.Errorf("booking service initialization error: initial status %q is not active", initialStatus)
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultBookingService{
		Repo:          repo,
		Venues:        venues,
		Clock:         clock,
		Location:      loc,
		InitialStatus: initialStatus,
		Logger:        logger,
	}, nil
}

func (s *DefaultBookingService) today() models.Date {
	return models.DateOf(s.Clock.Now(), s.Location)
}
