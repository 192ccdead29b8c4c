package venueRepo

import (
	"context"
	"fmt"
	"sync"

	"venuebook/models"
)

// MemoryVenueDirectory serves capacities from process memory. It backs the
// memory store driver and tests.
type MemoryVenueDirectory struct {
	mu     sync.RWMutex
	venues map[string]models.Venue
}

// NewMemoryVenueDirectory seeds a directory with venues.
func NewMemoryVenueDirectory(venues ...models.Venue) *MemoryVenueDirectory {
	d := &MemoryVenueDirectory{venues: make(map[string]models.Venue, len(venues))}
	for _, v := range venues {
		d.Put(v)
	}
	return d
}

// Put adds or replaces a venue.
func (d *MemoryVenueDirectory) Put(venue models.Venue) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.venues[venue.ID] = venue
}

func (d *MemoryVenueDirectory) GetCapacity(ctx context.Context, venueID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.venues[venueID]
	if !ok {
		return 0, fmt.Errorf("venue %s: %w", venueID, models.ErrNotFound)
	}
	return v.Capacity, nil
}
