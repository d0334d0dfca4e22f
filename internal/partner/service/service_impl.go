package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smcatl/skyyield-backend/internal/clock"
	"github.com/smcatl/skyyield-backend/internal/partner/domain"
	"github.com/smcatl/skyyield-backend/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("partner.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreatePartnerRequest) (domain.Partner, error) {
	if _, ok := req.Kind.Table(); !ok {
		return domain.Partner{}, domain.ErrInvalidKind
	}

	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return domain.Partner{}, domain.ErrInvalidCompanyName
	}

	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		return domain.Partner{}, domain.ErrInvalidEmail
	}

	var referredBy *snowflake.ID
	if raw := strings.TrimSpace(req.ReferredByPartnerID); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil || id == 0 {
			return domain.Partner{}, domain.ErrInvalidID
		}
		referredBy = &id
	}

	now := s.clock.Now()
	partner := domain.Partner{
		ID:                  s.genID.Generate(),
		CompanyName:         name,
		ContactName:         strings.TrimSpace(req.ContactName),
		Email:               email,
		Phone:               strings.TrimSpace(req.Phone),
		Status:              domain.StatusPending,
		ReferredByPartnerID: referredBy,
		FlatFeeMonthly:      decimal.Zero,
		Percentage:          decimal.Zero,
		PerReferralAmount:   decimal.Zero,
		Metadata:            datatypes.JSONMap{},
		CreatedAt:           now,
		UpdatedAt:           now,
		Kind:                req.Kind,
	}

	if err := s.repo.Insert(ctx, s.db, req.Kind, &partner); err != nil {
		return domain.Partner{}, err
	}

	return partner, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetPartnerRequest) (domain.Partner, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Partner{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, req.Kind, id)
	if err != nil {
		return domain.Partner{}, err
	}
	if item == nil {
		return domain.Partner{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) List(ctx context.Context, req domain.ListPartnerRequest) (domain.ListPartnerResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, req.Kind, domain.ListFilter{Status: strings.TrimSpace(req.Status)}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  pageSize,
	})
	if err != nil {
		return domain.ListPartnerResponse{}, err
	}

	// The repo fetches one row past the page so the cursor can tell whether
	// a next page exists.
	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(p *domain.Partner) string {
		token, terr := pagination.EncodeCursor(pagination.Cursor{
			ID:        p.ID.String(),
			CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if terr != nil {
			return ""
		}
		return token
	})
	if len(items) > pageSize {
		items = items[:pageSize]
	}

	partners := make([]domain.Partner, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		partners = append(partners, *item)
	}

	resp := domain.ListPartnerResponse{Partners: partners, HasMore: pageInfo.HasMore}
	if pageInfo.HasMore {
		resp.NextPageToken = pageInfo.NextPageToken
	}
	return resp, nil
}

func (s *Service) SetStructure(ctx context.Context, req domain.SetStructureRequest) (domain.Partner, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Partner{}, err
	}

	switch req.StructureType {
	case domain.StructureFlatFee, domain.StructurePercentage, domain.StructurePerReferral, domain.StructureHybrid:
	default:
		return domain.Partner{}, domain.ErrInvalidStructure
	}

	if req.Percentage.IsNegative() || req.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return domain.Partner{}, domain.ErrInvalidPercentage
	}
	if req.FlatFeeMonthly.IsNegative() || req.PerReferralAmount.IsNegative() {
		return domain.Partner{}, domain.ErrInvalidStructure
	}

	existing, err := s.repo.FindByID(ctx, s.db, req.Kind, id)
	if err != nil {
		return domain.Partner{}, err
	}
	if existing == nil {
		return domain.Partner{}, domain.ErrNotFound
	}

	update := domain.StructureUpdate{
		StructureType:     req.StructureType,
		FlatFeeMonthly:    req.FlatFeeMonthly,
		Percentage:        req.Percentage,
		PerReferralAmount: req.PerReferralAmount,
	}
	if err := s.repo.UpdateStructure(ctx, s.db, req.Kind, id, update); err != nil {
		return domain.Partner{}, err
	}

	s.log.Info("commission structure updated",
		zap.String("partner_id", id.String()),
		zap.String("partner_type", string(req.Kind)),
		zap.String("structure_type", req.StructureType),
	)

	existing.StructureType = req.StructureType
	existing.FlatFeeMonthly = req.FlatFeeMonthly
	existing.Percentage = req.Percentage
	existing.PerReferralAmount = req.PerReferralAmount
	return *existing, nil
}

func (s *Service) Activate(ctx context.Context, req domain.ActivatePartnerRequest) (domain.Partner, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Partner{}, err
	}

	existing, err := s.repo.FindByID(ctx, s.db, req.Kind, id)
	if err != nil {
		return domain.Partner{}, err
	}
	if existing == nil {
		return domain.Partner{}, domain.ErrNotFound
	}

	now := s.clock.Now()
	if err := s.repo.UpdateStatus(ctx, s.db, req.Kind, id, domain.StatusActive, &now); err != nil {
		return domain.Partner{}, err
	}

	existing.Status = domain.StatusActive
	existing.ActivationDate = &now
	return *existing, nil
}

func (s *Service) CountActiveReferrals(ctx context.Context, referrerID snowflake.ID, from, to time.Time) (int64, error) {
	return s.repo.CountActiveReferrals(ctx, s.db, referrerID, from, to)
}

func (s *Service) DisplayName(ctx context.Context, kind domain.Kind, id snowflake.ID) (string, error) {
	return s.repo.DisplayName(ctx, s.db, kind, id)
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
