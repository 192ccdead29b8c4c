package notification

import (
	"context"
)

// Gateway delivers a text message to a phone number. Delivery errors wrap
// models.ErrDeliveryFailed.
type Gateway interface {
	Send(ctx context.Context, phone, message string) error
}
