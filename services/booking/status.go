package booking

import (
	"context"
	"fmt"
	"strings"

	"venuebook/models"

	"go.uber.org/zap"
)

// SetStatus moves a booking to status. Cancelled is terminal, so cancelling
// twice fails with models.ErrInvalidTransition.
func (s *DefaultBookingService) SetStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: booking id is required", models.ErrInvalidInput)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown booking status %q", models.ErrInvalidInput, status)
	}

	updated, err := s.Repo.UpdateStatus(ctx, id, status, s.Clock.Now())
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Booking status changed",
		zap.String("booking_id", id),
		zap.String("status", string(status)))
	return updated, nil
}

// DeleteBooking permanently removes a booking whatever its status.
func (s *DefaultBookingService) DeleteBooking(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: booking id is required", models.ErrInvalidInput)
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.Warn("Booking deleted", zap.String("booking_id", id))
	return nil
}
