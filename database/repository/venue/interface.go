// File: database/repository/venue/interface.go
package venueRepo

import (
	"context"
)

// VenueDirectory is the read-only lookup the booking engine uses to learn a
// venue's capacity. Unknown venues fail with models.ErrNotFound.
type VenueDirectory interface {
	GetCapacity(ctx context.Context, venueID string) (int, error)
}
