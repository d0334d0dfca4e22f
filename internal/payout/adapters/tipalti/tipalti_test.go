package tipalti

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	payoutdomain "github.com/smcatl/skyyield-backend/internal/payout/domain"
)

func sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("  ")
	assert.ErrorIs(t, err, payoutdomain.ErrInvalidConfig)

	adapter, err := New("whsec_test")
	require.NoError(t, err)
	assert.Equal(t, "tipalti", adapter.Name())
}

func TestVerify(t *testing.T) {
	adapter, err := New("whsec_test")
	require.NoError(t, err)

	payload := []byte(`{"event_id":"evt_1"}`)

	t.Run("valid signature", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Tipalti-Signature", sign("whsec_test", payload))
		assert.NoError(t, adapter.Verify(context.Background(), payload, headers))
	})

	t.Run("uppercase hex accepted", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Tipalti-Signature", "ABCDEF")
		// wrong value, but exercises the lowercase fold before compare
		assert.ErrorIs(t, adapter.Verify(context.Background(), payload, headers), payoutdomain.ErrInvalidSignature)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.ErrorIs(t, adapter.Verify(context.Background(), payload, http.Header{}), payoutdomain.ErrInvalidSignature)
	})

	t.Run("wrong secret", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Tipalti-Signature", sign("whsec_other", payload))
		assert.ErrorIs(t, adapter.Verify(context.Background(), payload, headers), payoutdomain.ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		headers := http.Header{}
		headers.Set("X-Tipalti-Signature", sign("whsec_test", payload))
		assert.ErrorIs(t, adapter.Verify(context.Background(), []byte(`{}`), headers), payoutdomain.ErrInvalidSignature)
	})
}

func TestParse(t *testing.T) {
	adapter, err := New("whsec_test")
	require.NoError(t, err)

	t.Run("payment completed", func(t *testing.T) {
		event, err := adapter.Parse(context.Background(), []byte(`{
			"event_id": "evt_1",
			"type": "payment.completed",
			"ref_code": "COMM-2026-004",
			"payment_id": "pay_789",
			"payment_method": "wire",
			"paid_on": "2026-03-02T15:04:05Z"
		}`))
		require.NoError(t, err)
		assert.Equal(t, payoutdomain.EventTypePaymentCompleted, event.Type)
		assert.Equal(t, "evt_1", event.ProviderEventID)
		assert.Equal(t, "COMM-2026-004", event.CommissionRef)
		assert.Equal(t, "pay_789", event.PaymentID)
		assert.Equal(t, "wire", event.PaymentMethod)
		require.NotNil(t, event.PaidAt)
		assert.Equal(t, time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC), *event.PaidAt)
	})

	t.Run("payment failed", func(t *testing.T) {
		event, err := adapter.Parse(context.Background(), []byte(`{
			"event_id": "evt_2",
			"type": "payment.failed",
			"ref_code": "COMM-2026-005"
		}`))
		require.NoError(t, err)
		assert.Equal(t, payoutdomain.EventTypePaymentFailed, event.Type)
		assert.Nil(t, event.PaidAt)
	})

	t.Run("unknown type ignored", func(t *testing.T) {
		_, err := adapter.Parse(context.Background(), []byte(`{
			"event_id": "evt_3",
			"type": "payee.updated",
			"ref_code": "COMM-2026-006"
		}`))
		assert.ErrorIs(t, err, payoutdomain.ErrEventIgnored)
	})

	t.Run("missing ref code", func(t *testing.T) {
		_, err := adapter.Parse(context.Background(), []byte(`{"event_id":"evt_4","type":"payment.completed"}`))
		assert.ErrorIs(t, err, payoutdomain.ErrInvalidPayload)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := adapter.Parse(context.Background(), []byte(`{`))
		assert.ErrorIs(t, err, payoutdomain.ErrInvalidPayload)
	})

	t.Run("missing event id gets a synthetic key", func(t *testing.T) {
		event, err := adapter.Parse(context.Background(), []byte(`{
			"type": "payment.completed",
			"ref_code": "COMM-2026-007"
		}`))
		require.NoError(t, err)
		assert.NotEmpty(t, event.ProviderEventID)
	})
}
