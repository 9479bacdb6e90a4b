package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dtbooking/backend/internal/apperr"
	"github.com/dtbooking/backend/internal/models"
)

func TestHTTPDispatcherSendPush(t *testing.T) {
	var got models.NotificationRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/push" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := HTTPDispatcher{PushURL: srv.URL}
	req := models.NotificationRequest{
		JobID:     7,
		Channel:   models.ChannelPush,
		Recipient: models.RecipientAll,
		Payload:   map[string]any{"event": "new_job"},
	}
	if err := d.SendPush(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.JobID != 7 || got.Recipient != models.RecipientAll {
		t.Fatalf("unexpected payload delivered: %+v", got)
	}
}

func TestHTTPDispatcherGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	d := HTTPDispatcher{SMSURL: srv.URL}
	err := d.SendSMS(context.Background(), models.NotificationRequest{JobID: 1})
	if !apperr.IsKind(err, apperr.KindDispatch) {
		t.Fatalf("expected dispatch error on non-2xx response, got %v", err)
	}
}

func TestHTTPDispatcherUnconfiguredGateway(t *testing.T) {
	d := HTTPDispatcher{}
	if err := d.SendPush(context.Background(), models.NotificationRequest{}); !apperr.IsKind(err, apperr.KindDispatch) {
		t.Fatalf("expected dispatch error when push gateway missing, got %v", err)
	}
	if err := d.SendSMS(context.Background(), models.NotificationRequest{}); !apperr.IsKind(err, apperr.KindDispatch) {
		t.Fatalf("expected dispatch error when sms gateway missing, got %v", err)
	}
}
