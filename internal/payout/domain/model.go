package domain

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	EventTypePaymentCompleted = "payment_completed"
	EventTypePaymentFailed    = "payment_failed"
)

// PayoutEvent is a provider-agnostic payout notification. CommissionRef is the
// display ID of the commission record the payment settles.
type PayoutEvent struct {
	ProviderEventID string
	Type            string
	CommissionRef   string
	PaymentID       string
	PaymentMethod   string
	PaidAt          *time.Time
}

// Provider is a payout processor integration. Implementations verify the
// webhook origin before parsing.
type Provider interface {
	Name() string
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*PayoutEvent, error)
}

// ProcessedEvent records a handled webhook delivery for idempotency.
type ProcessedEvent struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Provider  string       `gorm:"not null;index:idx_payout_event_key,unique"`
	EventKey  string       `gorm:"not null;index:idx_payout_event_key,unique"`
	CreatedAt time.Time    `gorm:"not null"`
}

func (ProcessedEvent) TableName() string {
	return "payout_events"
}

var (
	ErrUnknownProvider  = errors.New("unknown_payout_provider")
	ErrInvalidConfig    = errors.New("invalid_provider_config")
	ErrInvalidSignature = errors.New("invalid_webhook_signature")
	ErrInvalidPayload   = errors.New("invalid_webhook_payload")
	ErrEventIgnored     = errors.New("event_ignored")
)
