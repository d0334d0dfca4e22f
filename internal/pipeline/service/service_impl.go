package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smcatl/skyyield-backend/internal/clock"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
	"github.com/smcatl/skyyield-backend/internal/pipeline/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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
		log:      p.Log.Named("pipeline.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		partners: p.Partners,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.Application, error) {
	kind, ok := partnerdomain.ParseKind(strings.TrimSpace(req.PartnerType))
	if !ok {
		return domain.Application{}, domain.ErrInvalidRequest
	}

	name := strings.TrimSpace(req.CompanyName)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return domain.Application{}, domain.ErrInvalidRequest
	}

	now := s.clock.Now()
	app := domain.Application{
		ID:          s.genID.Generate(),
		PartnerType: kind,
		CompanyName: name,
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		Message:     strings.TrimSpace(req.Message),
		Stage:       domain.StageApplied,
		Metadata:    datatypes.JSONMap{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, &app); err != nil {
		return domain.Application{}, err
	}

	s.log.Info("partner application submitted",
		zap.String("application_id", app.ID.String()),
		zap.String("partner_type", string(kind)),
	)

	return app, nil
}

func (s *Service) GetByID(ctx context.Context, req domain.GetRequest) (domain.Application, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Application{}, err
	}

	app, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Application{}, err
	}
	if app == nil {
		return domain.Application{}, domain.ErrNotFound
	}
	return *app, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	stage := strings.TrimSpace(req.Stage)
	if stage != "" && !validStage(stage) {
		return domain.ListResponse{}, domain.ErrInvalidStage
	}

	items, err := s.repo.List(ctx, s.db, stage)
	if err != nil {
		return domain.ListResponse{}, err
	}

	apps := make([]domain.Application, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		apps = append(apps, *item)
	}
	return domain.ListResponse{Applications: apps}, nil
}

// Transition moves an application to the requested stage. Approval provisions
// a partner row of the requested kind; the application keeps a pointer to it.
func (s *Service) Transition(ctx context.Context, req domain.TransitionRequest) (domain.Application, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Application{}, err
	}

	stage := strings.TrimSpace(req.Stage)
	if !validStage(stage) {
		return domain.Application{}, domain.ErrInvalidStage
	}

	app, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Application{}, err
	}
	if app == nil {
		return domain.Application{}, domain.ErrNotFound
	}

	if !domain.CanTransition(app.Stage, stage) {
		return domain.Application{}, domain.ErrInvalidTransition
	}

	if stage == domain.StageApproved && app.PartnerID == nil {
		partner, perr := s.partners.Create(ctx, partnerdomain.CreatePartnerRequest{
			Kind:        app.PartnerType,
			CompanyName: app.CompanyName,
			ContactName: app.ContactName,
			Email:       app.Email,
			Phone:       app.Phone,
		})
		if perr != nil {
			return domain.Application{}, perr
		}
		app.PartnerID = &partner.ID
	}

	if stage == domain.StageLive && app.PartnerID != nil {
		_, aerr := s.partners.Activate(ctx, partnerdomain.ActivatePartnerRequest{
			Kind: app.PartnerType,
			ID:   app.PartnerID.String(),
		})
		if aerr != nil {
			return domain.Application{}, aerr
		}
	}

	from := app.Stage
	app.Stage = stage
	if stage == domain.StageRejected {
		app.RejectionReason = strings.TrimSpace(req.RejectionReason)
	}
	app.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, app); err != nil {
		return domain.Application{}, err
	}

	s.log.Info("application stage changed",
		zap.String("application_id", app.ID.String()),
		zap.String("from", from),
		zap.String("to", stage),
	)

	return *app, nil
}

func validStage(stage string) bool {
	switch stage {
	case domain.StageApplied, domain.StageReviewing, domain.StageApproved,
		domain.StageRejected, domain.StageSigned, domain.StageLive:
		return true
	default:
		return false
	}
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
