package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dtbooking/backend/internal/apperr"
	"github.com/dtbooking/backend/internal/models"
)

// HTTPDispatcher posts notification requests to external push/SMS gateways.
type HTTPDispatcher struct {
	PushURL string
	SMSURL  string
	Client  *http.Client
}

func (d HTTPDispatcher) SendPush(ctx context.Context, req models.NotificationRequest) error {
	if d.PushURL == "" {
		return apperr.Dispatch("push gateway not configured", nil)
	}
	return d.post(ctx, d.PushURL+"/push", req)
}

func (d HTTPDispatcher) SendSMS(ctx context.Context, req models.NotificationRequest) error {
	if d.SMSURL == "" {
		return apperr.Dispatch("sms gateway not configured", nil)
	}
	return d.post(ctx, d.SMSURL+"/sms", req)
}

func (d HTTPDispatcher) post(ctx context.Context, url string, payload models.NotificationRequest) error {
	if d.Client == nil {
		d.Client = &http.Client{Timeout: 15 * time.Second}
	}

	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.Client.Do(req)
	if err != nil {
		return apperr.Dispatch("gateway request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperr.Dispatch(fmt.Sprintf("gateway returned status %d", resp.StatusCode), nil)
	}
	return nil
}
