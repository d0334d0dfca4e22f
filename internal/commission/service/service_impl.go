package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smcatl/skyyield-backend/internal/clock"
	"github.com/smcatl/skyyield-backend/internal/commission/domain"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Partners partnerdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	partners partnerdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("commission.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		partners: p.Partners,
	}
}

// Calculate loads the partner's stored structure, runs the calculator and
// inserts a pending record. Recalculating a month is append-only: a second
// request creates a second row.
func (s *Service) Calculate(ctx context.Context, req domain.CalculateRequest) (domain.Record, error) {
	kind, ok := partnerdomain.ParseKind(strings.TrimSpace(req.PartnerType))
	if !ok {
		return domain.Record{}, domain.ErrUnknownPartnerType
	}

	partnerID, err := snowflake.ParseString(strings.TrimSpace(req.PartnerID))
	if err != nil || partnerID == 0 {
		return domain.Record{}, domain.ErrInvalidPartnerID
	}

	month, err := ParseMonth(req.Month)
	if err != nil {
		return domain.Record{}, err
	}

	partner, err := s.partners.GetByID(ctx, partnerdomain.GetPartnerRequest{Kind: kind, ID: req.PartnerID})
	if err != nil {
		if err == partnerdomain.ErrNotFound {
			return domain.Record{}, domain.ErrPartnerNotFound
		}
		return domain.Record{}, err
	}

	if partner.StructureType == "" {
		return domain.Record{}, domain.ErrNoStructure
	}

	structure := domain.Structure{
		Type:              partner.StructureType,
		FlatFeeMonthly:    partner.FlatFeeMonthly,
		Percentage:        partner.Percentage,
		PerReferralAmount: partner.PerReferralAmount,
	}

	input := domain.CalcInput{RevenueBasis: req.RevenueBasis}
	if structure.Type == partnerdomain.StructurePerReferral {
		nextMonth := month.AddDate(0, 1, 0)
		count, cerr := s.partners.CountActiveReferrals(ctx, partnerID, month, nextMonth)
		if cerr != nil {
			// An unavailable count is zero, never a failure.
			s.log.Warn("referral count unavailable",
				zap.String("partner_id", partnerID.String()),
				zap.Error(cerr),
			)
			count = 0
		}
		input.ReferralCount = count
	}

	result, err := Calculate(structure, input)
	if err != nil {
		return domain.Record{}, err
	}

	record := domain.Record{
		ID:                 s.genID.Generate(),
		CommissionMonth:    month,
		Amount:             result.Amount,
		CalculationMethod:  result.Method,
		CalculationDetails: result.Details,
		RevenueBasis:       req.RevenueBasis,
		PaymentStatus:      domain.StatusPending,
	}
	if err := record.SetRecipient(kind, partnerID); err != nil {
		return domain.Record{}, err
	}

	if err := s.insertWithDisplayID(ctx, &record); err != nil {
		return domain.Record{}, err
	}

	s.log.Info("commission calculated",
		zap.String("display_id", record.DisplayID),
		zap.String("partner_id", partnerID.String()),
		zap.String("method", record.CalculationMethod),
		zap.String("amount", record.Amount.String()),
	)

	return record, nil
}

// Create inserts a record verbatim, without recomputation.
func (s *Service) Create(ctx context.Context, req domain.CreateRecordRequest) (domain.Record, error) {
	kind, ok := partnerdomain.ParseKind(strings.TrimSpace(req.RecipientType))
	if !ok {
		return domain.Record{}, domain.ErrUnknownPartnerType
	}

	partnerID, err := snowflake.ParseString(strings.TrimSpace(req.PartnerID))
	if err != nil || partnerID == 0 {
		return domain.Record{}, domain.ErrInvalidPartnerID
	}

	month, err := ParseMonth(req.CommissionMonth)
	if err != nil {
		return domain.Record{}, err
	}

	if req.CommissionAmount.IsNegative() {
		return domain.Record{}, domain.ErrInvalidAmount
	}

	record := domain.Record{
		ID:                 s.genID.Generate(),
		CommissionMonth:    month,
		Amount:             req.CommissionAmount,
		CalculationMethod:  strings.TrimSpace(req.CalculationMethod),
		CalculationDetails: strings.TrimSpace(req.CalculationDetails),
		RevenueBasis:       req.RevenueBasis,
		Notes:              strings.TrimSpace(req.Notes),
		PaymentStatus:      domain.StatusPending,
	}
	if err := record.SetRecipient(kind, partnerID); err != nil {
		return domain.Record{}, err
	}

	if err := s.insertWithDisplayID(ctx, &record); err != nil {
		return domain.Record{}, err
	}

	return record, nil
}

func (s *Service) UpdateStatus(ctx context.Context, req domain.UpdateStatusRequest) (domain.Record, error) {
	displayID := strings.TrimSpace(req.DisplayID)
	if displayID == "" {
		return domain.Record{}, domain.ErrMissingID
	}

	status := strings.TrimSpace(req.PaymentStatus)
	if status != domain.StatusPaid {
		return domain.Record{}, domain.ErrInvalidStatus
	}

	existing, err := s.repo.FindByDisplayID(ctx, s.db, displayID)
	if err != nil {
		return domain.Record{}, err
	}
	if existing == nil {
		return domain.Record{}, domain.ErrNotFound
	}
	if existing.PaymentStatus != domain.StatusPending {
		return domain.Record{}, domain.ErrInvalidTransition
	}

	paidAt := s.clock.Now()
	if raw := strings.TrimSpace(req.PaymentDate); raw != "" {
		parsed, perr := parseDate(raw)
		if perr != nil {
			return domain.Record{}, domain.ErrInvalidMonth
		}
		paidAt = parsed
	}

	update := domain.StatusUpdate{
		PaymentStatus: domain.StatusPaid,
		PaymentDate:   &paidAt,
	}
	if method := strings.TrimSpace(req.PaymentMethod); method != "" {
		update.PaymentMethod = &method
	}
	if ref := strings.TrimSpace(req.PaymentReference); ref != "" {
		update.PaymentReference = &ref
	}

	if err := s.repo.UpdateStatus(ctx, s.db, displayID, update); err != nil {
		return domain.Record{}, err
	}

	existing.PaymentStatus = domain.StatusPaid
	existing.PaymentDate = &paidAt
	existing.PaymentMethod = update.PaymentMethod
	existing.PaymentReference = update.PaymentReference

	s.log.Info("commission marked paid",
		zap.String("display_id", displayID),
		zap.Stringp("payment_reference", update.PaymentReference),
	)

	return *existing, nil
}

func (s *Service) GetByDisplayID(ctx context.Context, req domain.GetRecordRequest) (domain.Record, error) {
	displayID := strings.TrimSpace(req.DisplayID)
	if displayID == "" {
		return domain.Record{}, domain.ErrMissingID
	}

	record, err := s.repo.FindByDisplayID(ctx, s.db, displayID)
	if err != nil {
		return domain.Record{}, err
	}
	if record == nil {
		return domain.Record{}, domain.ErrNotFound
	}
	return *record, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRecordsRequest) (domain.ListRecordsResponse, error) {
	filter := domain.ListFilter{
		Status:        strings.TrimSpace(req.Status),
		RecipientType: strings.TrimSpace(req.RecipientType),
	}
	if raw := strings.TrimSpace(req.Month); raw != "" {
		month, err := ParseMonth(raw)
		if err != nil {
			return domain.ListRecordsResponse{}, err
		}
		filter.Month = &month
	}

	items, err := s.repo.List(ctx, s.db, filter)
	if err != nil {
		return domain.ListRecordsResponse{}, err
	}

	summary, err := s.repo.Aggregate(ctx, s.db, filter)
	if err != nil {
		return domain.ListRecordsResponse{}, err
	}

	records := make([]domain.Record, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		records = append(records, *item)
	}

	return domain.ListRecordsResponse{Records: records, Summary: summary}, nil
}

func (s *Service) insertWithDisplayID(ctx context.Context, record *domain.Record) error {
	now := s.clock.Now()
	seq, err := s.repo.NextDisplaySeq(ctx, s.db, now.Year())
	if err != nil {
		return err
	}
	record.DisplayID = FormatDisplayID(now.Year(), seq)
	record.CreatedAt = now
	record.UpdatedAt = now
	return s.repo.Insert(ctx, s.db, record)
}

// FormatDisplayID renders the human-readable commission identifier,
// zero-padded to three digits (COMM-2026-001).
func FormatDisplayID(year, seq int) string {
	return fmt.Sprintf("COMM-%d-%03d", year, seq)
}

// ParseMonth normalizes a month expression to the first of that month in UTC.
// Accepted forms: 2006-01, 2006-01-02, RFC3339.
func ParseMonth(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, domain.ErrInvalidMonth
	}
	parsed, err := parseDate(value)
	if err != nil {
		return time.Time{}, domain.ErrInvalidMonth
	}
	return time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01", "2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
