package service

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	commissiondomain "github.com/smcatl/skyyield-backend/internal/commission/domain"
	"github.com/smcatl/skyyield-backend/internal/payout/adapters"
	"github.com/smcatl/skyyield-backend/internal/payout/domain"
	"github.com/smcatl/skyyield-backend/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Registry    *adapters.Registry
	Commissions commissiondomain.Service
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	registry    *adapters.Registry
	commissions commissiondomain.Service
}

func New(p Params) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("payout.service"),
		genID:       p.GenID,
		registry:    p.Registry,
		commissions: p.Commissions,
	}
}

// HandleWebhook verifies, parses and applies one provider delivery. Completed
// payments mark the referenced commission paid with the provider payment id as
// the payment reference. Duplicate deliveries and ignored event types are
// acknowledged without effect.
func (s *Service) HandleWebhook(ctx context.Context, providerName string, payload []byte, headers http.Header) error {
	provider, ok := s.registry.Get(providerName)
	if !ok {
		return domain.ErrUnknownProvider
	}

	if err := provider.Verify(ctx, payload, headers); err != nil {
		return err
	}

	event, err := provider.Parse(ctx, payload)
	if err != nil {
		if err == domain.ErrEventIgnored {
			return nil
		}
		return err
	}

	processed := domain.ProcessedEvent{
		ID:        s.genID.Generate(),
		Provider:  providerName,
		EventKey:  event.ProviderEventID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&processed).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			s.log.Debug("duplicate webhook delivery",
				zap.String("provider", providerName),
				zap.String("event_key", event.ProviderEventID),
			)
			return nil
		}
		return err
	}

	switch event.Type {
	case domain.EventTypePaymentCompleted:
		return s.applyCompleted(ctx, providerName, event)
	case domain.EventTypePaymentFailed:
		s.log.Warn("payout failed",
			zap.String("provider", providerName),
			zap.String("commission_ref", event.CommissionRef),
			zap.String("payment_id", event.PaymentID),
		)
		return nil
	default:
		return nil
	}
}

func (s *Service) applyCompleted(ctx context.Context, providerName string, event *domain.PayoutEvent) error {
	req := commissiondomain.UpdateStatusRequest{
		DisplayID:        event.CommissionRef,
		PaymentStatus:    commissiondomain.StatusPaid,
		PaymentMethod:    event.PaymentMethod,
		PaymentReference: event.PaymentID,
	}
	if event.PaidAt != nil {
		req.PaymentDate = event.PaidAt.Format(time.RFC3339)
	}

	_, err := s.commissions.UpdateStatus(ctx, req)
	if err == commissiondomain.ErrInvalidTransition {
		// Already paid, e.g. marked manually before the webhook landed.
		s.log.Info("commission already settled",
			zap.String("commission_ref", event.CommissionRef),
		)
		return nil
	}
	if err != nil {
		return err
	}

	s.log.Info("commission settled by provider",
		zap.String("provider", providerName),
		zap.String("commission_ref", event.CommissionRef),
		zap.String("payment_id", event.PaymentID),
	)
	return nil
}
