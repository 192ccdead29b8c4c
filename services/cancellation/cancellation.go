package cancellation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"venuebook/models"
	"venuebook/services/booking"
	"venuebook/services/notification"
	"venuebook/services/verification"
	"venuebook/utils"

	"go.uber.org/zap"
)

// CancellationService runs the two-step guest cancellation: a code is sent
// to the phone on the booking, and the booking is cancelled once that code
// comes back. It keeps no state between the two calls.
type CancellationService interface {
	RequestCancellation(ctx context.Context, bookingID, phone string) (*models.CancellationTicket, error)
	ConfirmCancellation(ctx context.Context, bookingID, phone, code string) (*models.Booking, error)
}

// DefaultCancellationService implements CancellationService.
type DefaultCancellationService struct {
	Bookings booking.BookingService
	Codes    verification.VerificationService
	Gateway  notification.Gateway
	Logger   *zap.Logger
}

func NewDefaultCancellationService(
	bookings booking.BookingService,
	codes verification.VerificationService,
	gateway notification.Gateway,
	logger *zap.Logger,
) (*DefaultCancellationService, error) {
	if bookings == nil || codes == nil || gateway == nil {
		return nil, fmt.Errorf("cancellation service initialization error: booking service, verification service or gateway is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultCancellationService{
		Bookings: bookings,
		Codes:    codes,
		Gateway:  gateway,
		Logger:   logger,
	}, nil
}

// ownedBooking loads a booking and checks that phone is the one it was made with.
func (s *DefaultCancellationService) ownedBooking(ctx context.Context, bookingID, phone string) (*models.Booking, error) {
	b, err := s.Bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !utils.SamePhone(b.GuestPhone, phone) {
		return nil, fmt.Errorf("booking %s: %w", bookingID, models.ErrPhoneMismatch)
	}
	return b, nil
}

func cancellationMessage(b *models.Booking, code string, ttl time.Duration) string {
	minutes := int(math.Ceil(ttl.Minutes()))
	return fmt.Sprintf("Your code to cancel the booking for %s is %s. It expires in %d minutes.", b.Date, code, minutes)
}

// RequestCancellation issues a cancel-booking code and sends it to the guest.
// When delivery fails the error wraps models.ErrDeliveryFailed and the issued
// code stays valid until it expires or is replaced.
func (s *DefaultCancellationService) RequestCancellation(ctx context.Context, bookingID, phone string) (*models.CancellationTicket, error) {
	b, err := s.ownedBooking(ctx, bookingID, phone)
	if err != nil {
		return nil, err
	}

	issued, err := s.Codes.Issue(ctx, b.ID, models.PurposeCancelBooking)
	if err != nil {
		return nil, fmt.Errorf("failed to issue cancellation code: %w", err)
	}

	msg := cancellationMessage(b, issued.Code, issued.ExpiresAt.Sub(issued.IssuedAt))
	if err := s.Gateway.Send(ctx, b.GuestPhone, msg); err != nil {
		s.Logger.Warn("Cancellation code delivery failed",
			zap.String("booking_id", b.ID),
			zap.String("phone", utils.MaskPhone(b.GuestPhone)),
			zap.Error(err))
		if !errors.Is(err, models.ErrDeliveryFailed) {
			err = fmt.Errorf("%w: %v", models.ErrDeliveryFailed, err)
		}
		return nil, err
	}

	s.Logger.Info("Cancellation code sent",
		zap.String("booking_id", b.ID),
		zap.String("phone", utils.MaskPhone(b.GuestPhone)))
	return &models.CancellationTicket{
		BookingID: b.ID,
		SentTo:    utils.MaskPhone(b.GuestPhone),
		ExpiresAt: issued.ExpiresAt,
	}, nil
}

// ConfirmCancellation checks the code and cancels the booking. Errors from
// the code check and the status change are returned unchanged.
//
// A booking that can no longer be cancelled is rejected before the code is
// consumed. The code is still spent if SetStatus then fails on a storage
// error, and the guest has to request a new one.
func (s *DefaultCancellationService) ConfirmCancellation(ctx context.Context, bookingID, phone, code string) (*models.Booking, error) {
	b, err := s.ownedBooking(ctx, bookingID, phone)
	if err != nil {
		return nil, err
	}
	if !b.Status.CanTransitionTo(models.StatusCancelled) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, b.Status, models.StatusCancelled)
	}
	if err := s.Codes.Verify(ctx, b.ID, models.PurposeCancelBooking, code); err != nil {
		s.Logger.Info("Cancellation code rejected", zap.String("booking_id", b.ID), zap.Error(err))
		return nil, err
	}

	cancelled, err := s.Bookings.SetStatus(ctx, b.ID, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Booking cancelled by guest", zap.String("booking_id", b.ID))
	return cancelled, nil
}
