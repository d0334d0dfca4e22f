package tipalti

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	payoutdomain "github.com/smcatl/skyyield-backend/internal/payout/domain"
)

const signatureHeader = "X-Tipalti-Signature"

// New builds a Tipalti webhook adapter. The secret signs every delivery with
// HMAC-SHA256 over the raw body.
func New(webhookSecret string) (*Adapter, error) {
	secret := strings.TrimSpace(webhookSecret)
	if secret == "" {
		return nil, payoutdomain.ErrInvalidConfig
	}
	return &Adapter{webhookSecret: secret}, nil
}

type Adapter struct {
	webhookSecret string
}

func (a *Adapter) Name() string {
	return "tipalti"
}

func (a *Adapter) Verify(ctx context.Context, payload []byte, headers http.Header) error {
	signature := strings.TrimSpace(headers.Get(signatureHeader))
	if signature == "" {
		return payoutdomain.ErrInvalidSignature
	}

	mac := hmac.New(sha256.New, []byte(a.webhookSecret))
	_, _ = mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(strings.ToLower(signature)), []byte(expected)) {
		return payoutdomain.ErrInvalidSignature
	}
	return nil
}

type tipaltiEvent struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	RefCode       string `json:"ref_code"`
	PaymentID     string `json:"payment_id"`
	PaymentMethod string `json:"payment_method"`
	PaidOn        string `json:"paid_on"`
}

func (a *Adapter) Parse(ctx context.Context, payload []byte) (*payoutdomain.PayoutEvent, error) {
	var event tipaltiEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, payoutdomain.ErrInvalidPayload
	}

	refCode := strings.TrimSpace(event.RefCode)
	if refCode == "" {
		return nil, payoutdomain.ErrInvalidPayload
	}

	var eventType string
	switch strings.TrimSpace(event.Type) {
	case "payment.completed":
		eventType = payoutdomain.EventTypePaymentCompleted
	case "payment.failed":
		eventType = payoutdomain.EventTypePaymentFailed
	default:
		return nil, payoutdomain.ErrEventIgnored
	}

	eventID := strings.TrimSpace(event.EventID)
	if eventID == "" {
		// Tipalti omits the event id on some delivery retries; a random key
		// disables dedupe for those rather than dropping them.
		eventID = uuid.NewString()
	}

	out := &payoutdomain.PayoutEvent{
		ProviderEventID: eventID,
		Type:            eventType,
		CommissionRef:   refCode,
		PaymentID:       strings.TrimSpace(event.PaymentID),
		PaymentMethod:   strings.TrimSpace(event.PaymentMethod),
	}

	if raw := strings.TrimSpace(event.PaidOn); raw != "" {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			utc := ts.UTC()
			out.PaidAt = &utc
		}
	}

	return out, nil
}
