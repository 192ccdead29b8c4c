package bookingRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"venuebook/models"
)

// MemoryBookingRepo keeps bookings in process memory. A per-venue mutex is held
// across the availability check and the insert; reads share an RWMutex.
type MemoryBookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]*models.Booking

	locksMu    sync.Mutex
	venueLocks map[string]*sync.Mutex
}

// NewMemoryBookingRepo returns an empty in-memory repository.
func NewMemoryBookingRepo() *MemoryBookingRepo {
	return &MemoryBookingRepo{
		bookings:   make(map[string]*models.Booking),
		venueLocks: make(map[string]*sync.Mutex),
	}
}

// venueLock returns the mutex serializing inserts for a venue, creating it if needed.
func (r *MemoryBookingRepo) venueLock(venueID string) *sync.Mutex {
	r.locksMu.Lock()
	defer r.locksMu.Unlock()

	l, ok := r.venueLocks[venueID]
	if !ok {
		l = &sync.Mutex{}
		r.venueLocks[venueID] = l
	}
	return l
}

func (r *MemoryBookingRepo) Insert(ctx context.Context, booking *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := r.venueLock(booking.VenueID)
	lock.Lock()
	defer lock.Unlock()

	booking.Active = booking.Status.IsActive()

	// Only inserts can occupy a date and they are serialized per venue, so the
	// check may run under the shared read lock.
	r.mu.RLock()
	taken := booking.Active && r.hasActiveLocked(booking.VenueID, booking.Date)
	r.mu.RUnlock()
	if taken {
		return fmt.Errorf("%w: venue %s on %s", models.ErrConflict, booking.VenueID, booking.Date)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bookings[booking.ID]; exists {
		return fmt.Errorf("error creating booking: duplicate id %s", booking.ID)
	}
	stored := *booking
	r.bookings[booking.ID] = &stored
	return nil
}

func (r *MemoryBookingRepo) hasActiveLocked(venueID string, date models.Date) bool {
	for _, b := range r.bookings {
		if b.VenueID == venueID && b.Date == date && b.Active {
			return true
		}
	}
	return false
}

func (r *MemoryBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	out := *b
	return &out, nil
}

func (r *MemoryBookingRepo) collect(match func(*models.Booking) bool) []models.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []models.Booking{}
	for _, b := range r.bookings {
		if match(b) {
			out = append(out, *b)
		}
	}
	return out
}

func (r *MemoryBookingRepo) ListByPhone(ctx context.Context, phone string) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := r.collect(func(b *models.Booking) bool { return b.GuestPhone == phone })
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryBookingRepo) ListByVenue(ctx context.Context, venueID string) ([]models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := r.collect(func(b *models.Booking) bool { return b.VenueID == venueID })
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryBookingRepo) ActiveDates(ctx context.Context, venueID string) ([]models.Date, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	seen := make(map[models.Date]struct{})
	for _, b := range r.bookings {
		if b.VenueID == venueID && b.Active {
			seen[b.Date] = struct{}{}
		}
	}
	r.mu.RUnlock()

	dates := make([]models.Date, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
	return dates, nil
}

func (r *MemoryBookingRepo) HasActive(ctx context.Context, venueID string, date models.Date) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hasActiveLocked(venueID, date), nil
}

func (r *MemoryBookingRepo) UpdateStatus(ctx context.Context, id string, next models.BookingStatus, at time.Time) (*models.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	if !b.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, b.Status, next)
	}
	b.Status = next
	b.Active = next.IsActive()
	b.UpdatedAt = at
	out := *b
	return &out, nil
}

func (r *MemoryBookingRepo) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bookings[id]; !ok {
		return fmt.Errorf("booking %s: %w", id, models.ErrNotFound)
	}
	delete(r.bookings, id)
	return nil
}

// EnsureIndexes is a no-op for the memory repository.
func (r *MemoryBookingRepo) EnsureIndexes(context.Context) error {
	return nil
}
