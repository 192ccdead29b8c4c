package cancellation

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	bookingRepo "venuebook/database/repository/booking"
	venueRepo "venuebook/database/repository/venue"
	"venuebook/models"
	"venuebook/services/availability"
	"venuebook/services/booking"
	"venuebook/services/verification"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var _ CancellationService = (*DefaultCancellationService)(nil)

type sent struct {
	phone   string
	message string
}

type fakeGateway struct {
	mu   sync.Mutex
	fail error
	out  []sent
}

func (g *fakeGateway) Send(_ context.Context, phone, message string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.out = append(g.out, sent{phone: phone, message: message})
	return nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func (g *fakeGateway) lastCode(t *testing.T) string {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.out)
	m := codePattern.FindStringSubmatch(g.out[len(g.out)-1].message)
	require.Len(t, m, 2)
	return m[1]
}

type harness struct {
	svc      *DefaultCancellationService
	bookings *booking.DefaultBookingService
	avail    *availability.DefaultAvailabilityService
	codes    *verification.DefaultVerificationService
	gateway  *fakeGateway
	clock    *clockwork.FakeClock
	booking  *models.Booking
}

func newHarness(t *testing.T) harness {
	t.Helper()
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC))
	repo := bookingRepo.NewMemoryBookingRepo()
	venues := venueRepo.NewMemoryVenueDirectory(models.Venue{ID: "V1", Capacity: 100})

	bookings, err := booking.NewDefaultBookingService(repo, venues, clock, time.UTC, models.StatusPending, zap.NewNop())
	require.NoError(t, err)
	avail, err := availability.NewDefaultAvailabilityService(repo, clock, time.UTC)
	require.NoError(t, err)
	codes, err := verification.NewDefaultVerificationService(verification.NewMemoryCodeStore(), clock, 5*time.Minute, 30*time.Minute, zap.NewNop())
	require.NoError(t, err)
	gw := &fakeGateway{}
	svc, err := NewDefaultCancellationService(bookings, codes, gw, zap.NewNop())
	require.NoError(t, err)

	b, err := bookings.CreateBooking(ctx, "V1", models.GuestInfo{
		FirstName: "Grace", LastName: "Hopper", Phone: "+1 555 0100", Count: 50,
	}, "2025-12-01")
	require.NoError(t, err)

	return harness{svc: svc, bookings: bookings, avail: avail, codes: codes, gateway: gw, clock: clock, booking: b}
}

func (h harness) status(t *testing.T) models.BookingStatus {
	t.Helper()
	b, err := h.bookings.GetBooking(context.Background(), h.booking.ID)
	require.NoError(t, err)
	return b.Status
}

func TestRequestWithWrongPhone(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.RequestCancellation(context.Background(), h.booking.ID, "+15559999")
	assert.ErrorIs(t, err, models.ErrPhoneMismatch)
	assert.Equal(t, models.StatusPending, h.status(t))
	assert.Empty(t, h.gateway.out)
}

func TestRequestUnknownBooking(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.RequestCancellation(context.Background(), "missing", "+15550100")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCancelHappyPath(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	ticket, err := h.svc.RequestCancellation(ctx, h.booking.ID, "+1-555-0100")
	require.NoError(t, err)
	assert.Equal(t, h.booking.ID, ticket.BookingID)
	assert.Equal(t, h.clock.Now().Add(5*time.Minute), ticket.ExpiresAt)
	assert.NotContains(t, ticket.SentTo, "1555")
	require.Len(t, h.gateway.out, 1)
	assert.Equal(t, "+15550100", h.gateway.out[0].phone)

	h.clock.Advance(2 * time.Minute)
	cancelled, err := h.svc.ConfirmCancellation(ctx, h.booking.ID, "+15550100", h.gateway.lastCode(t))
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	dates, err := h.avail.ListUnavailableDates(ctx, "V1")
	require.NoError(t, err)
	assert.NotContains(t, dates, models.Date("2025-12-01"))
}

func TestConfirmWithExpiredCode(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.RequestCancellation(ctx, h.booking.ID, "+15550100")
	require.NoError(t, err)
	h.clock.Advance(5*time.Minute + time.Second)

	_, err = h.svc.ConfirmCancellation(ctx, h.booking.ID, "+15550100", h.gateway.lastCode(t))
	assert.ErrorIs(t, err, models.ErrExpired)
	assert.Equal(t, models.StatusPending, h.status(t))
}

func TestConfirmWithWrongCodeOrPhone(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.svc.RequestCancellation(ctx, h.booking.ID, "+15550100")
	require.NoError(t, err)
	code := h.gateway.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}

	_, err = h.svc.ConfirmCancellation(ctx, h.booking.ID, "+15550100", wrong)
	assert.ErrorIs(t, err, models.ErrMismatch)
	_, err = h.svc.ConfirmCancellation(ctx, h.booking.ID, "+15559999", code)
	assert.ErrorIs(t, err, models.ErrPhoneMismatch)
	assert.Equal(t, models.StatusPending, h.status(t))

	// The code survives both failures.
	_, err = h.svc.ConfirmCancellation(ctx, h.booking.ID, "+15550100", code)
	require.NoError(t, err)

	// Replaying it finds nothing.
	_, err = h.svc.ConfirmCancellation(ctx, h.booking.ID, "+15550100", code)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConfirmAlreadyCancelled(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	_, err := h.bookings.SetStatus(ctx, h.booking.ID, models.StatusCancelled)
	require.NoError(t, err)

	_, err = h.svc.RequestCancellation(ctx, h.booking.ID, "+15550100")
	require.NoError(t, err)
	code := h.gateway.lastCode(t)
	_, err = h.svc.ConfirmCancellation(ctx, h.booking.ID, "+15550100", code)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	// The refused confirmation left the code unspent.
	assert.NoError(t, h.codes.Verify(ctx, h.booking.ID, models.PurposeCancelBooking, code))
}

func TestDeliveryFailureKeepsCode(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	h.gateway.fail = errors.New("socket closed")
	_, err := h.svc.RequestCancellation(ctx, h.booking.ID, "+15550100")
	assert.ErrorIs(t, err, models.ErrDeliveryFailed)

	// A follow-up request replaces the undelivered code.
	h.gateway.fail = nil
	_, err = h.svc.RequestCancellation(ctx, h.booking.ID, "+15550100")
	require.NoError(t, err)
	_, err = h.svc.ConfirmCancellation(ctx, h.booking.ID, "+15550100", h.gateway.lastCode(t))
	assert.NoError(t, err)
}

type capturingCodes struct {
	verification.VerificationService
	last *verification.IssuedCode
}

func (c *capturingCodes) Issue(ctx context.Context, subjectID string, purpose models.CodePurpose) (*verification.IssuedCode, error) {
	issued, err := c.VerificationService.Issue(ctx, subjectID, purpose)
	c.last = issued
	return issued, err
}

func TestUndeliveredCodeStaysValid(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	codes := &capturingCodes{VerificationService: h.codes}
	svc, err := NewDefaultCancellationService(h.bookings, codes, &fakeGateway{fail: models.ErrDeliveryFailed}, nil)
	require.NoError(t, err)

	_, err = svc.RequestCancellation(ctx, h.booking.ID, "+15550100")
	require.ErrorIs(t, err, models.ErrDeliveryFailed)
	require.NotNil(t, codes.last)

	_, err = svc.ConfirmCancellation(ctx, h.booking.ID, "+15550100", codes.last.Code)
	assert.NoError(t, err)
}
