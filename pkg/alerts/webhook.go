package alerts

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// WebhookNotifier posts alerts as JSON to an HTTP endpoint.
type WebhookNotifier struct {
	url    string
	secret string
	client *http.Client
}

// NewWebhookNotifier creates a generic webhook notifier.
// If secret is non-empty, requests are signed with HMAC-SHA256.
func NewWebhookNotifier(url, secret string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (w *WebhookNotifier) Name() string { return "webhook" }

// Send posts one battery event. Each delivery carries its own ID so
// receivers can drop retries they have already handled.
func (w *WebhookNotifier) Send(ctx context.Context, alert Alert) error {
	sentAt := time.Now().UTC()
	occurredAt := alert.Timestamp
	if occurredAt.IsZero() {
		occurredAt = sentAt
	}
	payload := webhookPayload{
		Event:      eventName(alert),
		DeliveryID: uuid.NewString(),
		Kind:       alert.Kind.String(),
		Level:      alert.Level,
		Low:        alert.Low,
		High:       alert.High,
		Title:      alert.Title,
		Message:    alert.Message,
		OccurredAt: occurredAt.Format(time.RFC3339),
		SentAt:     sentAt.Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Battery-Observer/1.0")
	req.Header.Set("X-Batobs-Event", payload.Event)
	req.Header.Set("X-Batobs-Delivery", payload.DeliveryID)

	if w.secret != "" {
		req.Header.Set("X-Signature-256", "sha256="+ComputeHMAC(body, []byte(w.secret)))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send %s webhook: %w", payload.Event, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected %s: status %d", payload.Event, resp.StatusCode)
	}
	return nil
}

func eventName(alert Alert) string {
	return "battery." + alert.Kind.String()
}

// webhookPayload is the flat JSON body receivers get.
type webhookPayload struct {
	Event      string `json:"event"`
	DeliveryID string `json:"delivery_id"`
	Kind       string `json:"kind"`
	Level      int    `json:"level"`
	Low        int    `json:"low_threshold"`
	High       int    `json:"high_threshold"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	OccurredAt string `json:"occurred_at"`
	SentAt     string `json:"sent_at"`
}

// ComputeHMAC returns the hex HMAC-SHA256 of message under key.
func ComputeHMAC(message, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(message)
	return hex.EncodeToString(mac.Sum(nil))
}
