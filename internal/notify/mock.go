package notify

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dtbooking/backend/internal/models"
)

// MockDispatcher records every request instead of delivering it. Used in dev
// when no gateway is configured, and by tests to assert dispatch decisions.
type MockDispatcher struct {
	Logger zerolog.Logger

	mu   sync.Mutex
	sent []models.NotificationRequest
}

func (m *MockDispatcher) SendPush(ctx context.Context, req models.NotificationRequest) error {
	return m.record(req)
}

func (m *MockDispatcher) SendSMS(ctx context.Context, req models.NotificationRequest) error {
	return m.record(req)
}

func (m *MockDispatcher) record(req models.NotificationRequest) error {
	m.mu.Lock()
	m.sent = append(m.sent, req)
	m.mu.Unlock()
	m.Logger.Info().
		Int64("job_id", req.JobID).
		Str("channel", string(req.Channel)).
		Str("recipient", req.Recipient).
		Msg("mock notification recorded")
	return nil
}

// Sent returns a copy of everything recorded so far.
func (m *MockDispatcher) Sent() []models.NotificationRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.NotificationRequest, len(m.sent))
	copy(out, m.sent)
	return out
}
