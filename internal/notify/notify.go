package notify

import (
	"context"

	"github.com/dtbooking/backend/internal/models"
)

// Dispatcher delivers translator notifications. The engine decides when to
// call it and with what payload; delivery mechanics live behind this
// interface.
type Dispatcher interface {
	SendPush(ctx context.Context, req models.NotificationRequest) error
	SendSMS(ctx context.Context, req models.NotificationRequest) error
}
