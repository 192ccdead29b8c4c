package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	bookingRepo "venuebook/database/repository/booking"
	venueRepo "venuebook/database/repository/venue"
	"venuebook/handlers"
	"venuebook/models"
	"venuebook/services/availability"
	"venuebook/services/booking"
	"venuebook/services/cancellation"
	"venuebook/services/verification"
	"venuebook/utils"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var adminSecret = []byte("route-test-secret")

type outbox struct {
	mu       sync.Mutex
	messages []string
}

func (o *outbox) Send(_ context.Context, _, message string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, message)
	return nil
}

func (o *outbox) lastCode(t *testing.T) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	require.NotEmpty(t, o.messages)
	m := regexp.MustCompile(`\b(\d{6})\b`).FindStringSubmatch(o.messages[len(o.messages)-1])
	require.Len(t, m, 2)
	return m[1]
}

type server struct {
	router *gin.Engine
	clock  *clockwork.FakeClock
	outbox *outbox
}

func newServer(t *testing.T) server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 11, 1, 9, 0, 0, 0, time.UTC))

	repo := bookingRepo.NewMemoryBookingRepo()
	venues := venueRepo.NewMemoryVenueDirectory(models.Venue{ID: "V1", Capacity: 100})
	bookingSvc, err := booking.NewDefaultBookingService(repo, venues, clock, time.UTC, models.StatusPending, logger)
	require.NoError(t, err)
	availSvc, err := availability.NewDefaultAvailabilityService(repo, clock, time.UTC)
	require.NoError(t, err)
	codes, err := verification.NewDefaultVerificationService(verification.NewMemoryCodeStore(), clock, 5*time.Minute, time.Hour, logger)
	require.NoError(t, err)
	box := &outbox{}
	cancelSvc, err := cancellation.NewDefaultCancellationService(bookingSvc, codes, box, logger)
	require.NoError(t, err)

	hb := handlers.NewHandlerBundle(
		handlers.NewBookingHandler(bookingSvc, availSvc, logger),
		handlers.NewCancellationHandler(cancelSvc, logger),
		handlers.NewAdminHandler(bookingSvc, logger),
	)
	r := gin.New()
	r.Use(utils.ErrorHandler())
	require.NoError(t, RegisterRoutes(r, hb, Options{
		AdminSecret:                adminSecret,
		CancellationRequestsPerMin: 3,
		ConfirmAttemptsPerMin:      5,
	}))
	return server{router: r, clock: clock, outbox: box}
}

func (s server) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	return s.doFrom(t, method, path, body, token, "")
}

// doFrom sends the request with a client supplied X-Forwarded-For header.
func (s server) doFrom(t *testing.T, method, path string, body any, token, forwardedFor string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func reservation(date string, count int) gin.H {
	return gin.H{
		"venue_id": "V1",
		"date":     date,
		"guest": gin.H{
			"first_name":  "Grace",
			"last_name":   "Hopper",
			"phone":       "+1 555 0100",
			"guest_count": count,
		},
	}
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newServer(t)

	w := s.do(t, http.MethodPost, "/api/bookings", reservation("2025-12-01", 50), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Booking](t, w)
	assert.Equal(t, models.StatusPending, created.Status)

	w = s.do(t, http.MethodPost, "/api/bookings", reservation("2025-12-01", 10), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "date unavailable", decode[utils.ErrorResponse](t, w).Message)

	w = s.do(t, http.MethodGet, "/api/venues/V1/unavailable-dates", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	dates := decode[struct {
		Dates []models.Date `json:"unavailable_dates"`
	}](t, w)
	assert.Equal(t, []models.Date{"2025-12-01"}, dates.Dates)

	w = s.do(t, http.MethodGet, "/api/venues/V1/availability?date=2025-12-01", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[struct {
		Available bool `json:"available"`
	}](t, w).Available)

	w = s.do(t, http.MethodGet, "/api/bookings?phone=%2B15550100", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Bookings []models.Booking `json:"bookings"`
	}](t, w).Bookings, 1)

	// Wrong phone is refused before any code is sent.
	w = s.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancellation", gin.H{"phone": "+15559999"}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, s.outbox.messages)

	w = s.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancellation", gin.H{"phone": "+15550100"}, "")
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), s.outbox.lastCode(t))

	w = s.do(t, http.MethodPost, "/api/bookings/"+created.ID+"/cancellation/confirm",
		gin.H{"phone": "+15550100", "code": s.outbox.lastCode(t)}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusCancelled, decode[models.Booking](t, w).Status)

	w = s.do(t, http.MethodGet, "/api/venues/V1/unavailable-dates", nil, "")
	assert.NotContains(t, w.Body.String(), "2025-12-01")
}

func TestCreateBookingErrors(t *testing.T) {
	s := newServer(t)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"past date", reservation("2025-10-01", 10), http.StatusUnprocessableEntity},
		{"over capacity", reservation("2025-12-01", 150), http.StatusUnprocessableEntity},
		{"malformed date", reservation("01/12/2025", 10), http.StatusBadRequest},
		{"missing guest", gin.H{"venue_id": "V1", "date": "2025-12-01"}, http.StatusBadRequest},
		{"unknown venue", gin.H{"venue_id": "V9", "date": "2025-12-01", "guest": reservation("", 1)["guest"]}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/bookings", tt.body, "")
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestExpiredAndWrongCodesLookAlike(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodPost, "/api/bookings", reservation("2025-12-01", 5), "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Booking](t, w).ID

	w = s.do(t, http.MethodPost, "/api/bookings/"+id+"/cancellation", gin.H{"phone": "+15550100"}, "")
	require.Equal(t, http.StatusAccepted, w.Code)
	code := s.outbox.lastCode(t)
	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	mismatch := s.do(t, http.MethodPost, "/api/bookings/"+id+"/cancellation/confirm", gin.H{"phone": "+15550100", "code": wrong}, "")
	s.clock.Advance(6 * time.Minute)
	expired := s.do(t, http.MethodPost, "/api/bookings/"+id+"/cancellation/confirm", gin.H{"phone": "+15550100", "code": code}, "")

	assert.Equal(t, http.StatusUnauthorized, mismatch.Code)
	assert.Equal(t, mismatch.Code, expired.Code)
	assert.JSONEq(t, mismatch.Body.String(), expired.Body.String())

	w = s.do(t, http.MethodGet, "/api/bookings/"+id, nil, "")
	assert.Equal(t, models.StatusPending, decode[models.Booking](t, w).Status)

	bad := s.do(t, http.MethodPost, "/api/bookings/"+id+"/cancellation/confirm", gin.H{"phone": "+15550100", "code": "12ab56"}, "")
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestCancellationRequestsAreRateLimited(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodPost, "/api/bookings", reservation("2025-12-01", 5), "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Booking](t, w).ID

	for i := 0; i < 3; i++ {
		w = s.do(t, http.MethodPost, "/api/bookings/"+id+"/cancellation", gin.H{"phone": "+15550100"}, "")
		require.Equal(t, http.StatusAccepted, w.Code)
	}
	w = s.do(t, http.MethodPost, "/api/bookings/"+id+"/cancellation", gin.H{"phone": "+15550100"}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestForwardedForDoesNotResetCancellationLimit(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodPost, "/api/bookings", reservation("2025-12-01", 5), "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Booking](t, w).ID

	accepted := 0
	for i := 0; i < 10; i++ {
		w = s.doFrom(t, http.MethodPost, "/api/bookings/"+id+"/cancellation", gin.H{"phone": "+15550100"}, "", fmt.Sprintf("198.51.100.%d", i))
		if w.Code == http.StatusAccepted {
			accepted++
		}
	}
	assert.Equal(t, 3, accepted)
}

func TestCodeGuessesAreCappedPerBooking(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodPost, "/api/bookings", reservation("2025-12-01", 5), "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Booking](t, w).ID

	w = s.do(t, http.MethodPost, "/api/bookings/"+id+"/cancellation", gin.H{"phone": "+15550100"}, "")
	require.Equal(t, http.StatusAccepted, w.Code)
	code := s.outbox.lastCode(t)

	statuses := map[int]int{}
	for i := 0; i < 50; i++ {
		guess := fmt.Sprintf("%06d", i)
		if guess == code {
			guess = "999999"
		}
		w = s.doFrom(t, http.MethodPost, "/api/bookings/"+id+"/cancellation/confirm",
			gin.H{"phone": "+15550100", "code": guess}, "", fmt.Sprintf("198.51.100.%d", i))
		statuses[w.Code]++
	}
	assert.Equal(t, map[int]int{http.StatusUnauthorized: 5, http.StatusTooManyRequests: 45}, statuses)

	// The limit is per booking, so the right code is refused as well until it refills.
	w = s.do(t, http.MethodPost, "/api/bookings/"+id+"/cancellation/confirm", gin.H{"phone": "+15550100", "code": code}, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = s.do(t, http.MethodGet, "/api/bookings/"+id, nil, "")
	assert.Equal(t, models.StatusPending, decode[models.Booking](t, w).Status)
}

func TestRegisterRoutesRejectsBadProxy(t *testing.T) {
	r := gin.New()
	assert.Error(t, RegisterRoutes(r, &handlers.HandlerBundle{}, Options{TrustedProxies: []string{"not-an-ip"}}))
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t)
	token, err := utils.GenerateAdminToken(adminSecret, "ops", time.Hour)
	require.NoError(t, err)

	w := s.do(t, http.MethodPost, "/api/bookings", reservation("2025-12-01", 5), "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[models.Booking](t, w).ID

	w = s.do(t, http.MethodPatch, "/api/admin/bookings/"+id+"/status", gin.H{"status": "confirmed"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPatch, "/api/admin/bookings/"+id+"/status", gin.H{"status": "confirmed"}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, models.StatusConfirmed, decode[models.Booking](t, w).Status)

	w = s.do(t, http.MethodPatch, "/api/admin/bookings/"+id+"/status", gin.H{"status": "Cancelled"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPatch, "/api/admin/bookings/"+id+"/status", gin.H{"status": "Cancelled"}, token)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = s.do(t, http.MethodPatch, "/api/admin/bookings/"+id+"/status", gin.H{"status": "Archived"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/venues/V1/bookings", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[struct {
		Bookings []models.Booking `json:"bookings"`
	}](t, w).Bookings, 1)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/venues/V1/bookings", nil, "").Code)

	w = s.do(t, http.MethodDelete, "/api/admin/bookings/"+id, nil, token)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/admin/bookings/"+id, nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthRoute(t *testing.T) {
	s := newServer(t)
	w := s.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}
