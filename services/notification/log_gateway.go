package notification

import (
	"context"
	"fmt"

	"venuebook/models"

	"go.uber.org/zap"
)

// LogGateway writes messages to the log instead of sending them. Meant for
// development; the message body is logged as is.
type LogGateway struct {
	Logger *zap.Logger
}

func NewLogGateway(logger *zap.Logger) *LogGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogGateway{Logger: logger}
}

func (g *LogGateway) Send(ctx context.Context, phone, message string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", models.ErrDeliveryFailed, err)
	}
	g.Logger.Info("Notification", zap.String("to", phone), zap.String("message", message))
	return nil
}
