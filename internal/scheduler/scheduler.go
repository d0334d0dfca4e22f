package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smcatl/skyyield-backend/internal/clock"
	commissiondomain "github.com/smcatl/skyyield-backend/internal/commission/domain"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
	venuedomain "github.com/smcatl/skyyield-backend/internal/venue/domain"
	"github.com/smcatl/skyyield-backend/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler misconfigured")

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Partners    partnerdomain.Service
	Commissions commissiondomain.Service
	Venues      venuedomain.Service
	Config      Config `optional:"true"`
}

// Scheduler drives the monthly commission run: on the first day of each month
// it computes the previous month's commission for every active partner that
// has a structure configured.
type Scheduler struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         Config
	genID       *snowflake.Node
	clock       clock.Clock
	partners    partnerdomain.Service
	commissions commissiondomain.Service
	venues      venuedomain.Service
}

// monthlyRun marks a month as processed so restarts do not repeat it.
type monthlyRun struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	RunMonth  time.Time    `gorm:"column:run_month;uniqueIndex;not null"`
	Computed  int          `gorm:"not null"`
	Skipped   int          `gorm:"not null"`
	CreatedAt time.Time    `gorm:"not null"`
}

func (monthlyRun) TableName() string {
	return "commission_runs"
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.GenID == nil || p.Clock == nil ||
		p.Partners == nil || p.Commissions == nil || p.Venues == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		db:          p.DB,
		log:         p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:         p.Config.withDefaults(),
		genID:       p.GenID,
		clock:       p.Clock,
		partners:    p.Partners,
		commissions: p.Commissions,
		venues:      p.Venues,
	}, nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Tick(ctx); err != nil {
				s.log.Error("scheduler tick failed", zap.Error(err))
			}
		}
	}
}

// Tick runs the previous month's commission batch when the clock has crossed
// into a new month and that month has not been processed yet.
func (s *Scheduler) Tick(ctx context.Context) error {
	now := s.clock.Now()
	if now.Day() != 1 {
		return nil
	}

	target := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return s.RunMonth(ctx, target)
}

// RunSummary reports one batch outcome.
type RunSummary struct {
	Month    time.Time `json:"month"`
	Computed int       `json:"computed"`
	Skipped  int       `json:"skipped"`
}

// RunMonth computes commissions for every active configured partner for the
// given month. Already-processed months are a no-op.
func (s *Scheduler) RunMonth(ctx context.Context, month time.Time) error {
	month = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)

	run := monthlyRun{
		ID:        s.genID.Generate(),
		RunMonth:  month,
		CreatedAt: s.clock.Now(),
	}
	if err := s.db.WithContext(ctx).Create(&run).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil
		}
		return err
	}

	summary, err := s.computeAll(ctx, month)
	if err != nil {
		return err
	}

	if uerr := s.db.WithContext(ctx).
		Model(&monthlyRun{}).
		Where("id = ?", run.ID).
		Updates(map[string]any{"computed": summary.Computed, "skipped": summary.Skipped}).Error; uerr != nil {
		s.log.Warn("failed to record run summary", zap.Error(uerr))
	}

	s.log.Info("monthly commission run complete",
		zap.Time("month", month),
		zap.Int("computed", summary.Computed),
		zap.Int("skipped", summary.Skipped),
	)
	return nil
}

// ComputeMonth is the manual-trigger entry point: it bypasses the
// already-processed guard and returns the batch summary.
func (s *Scheduler) ComputeMonth(ctx context.Context, month time.Time) (RunSummary, error) {
	month = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return s.computeAll(ctx, month)
}

func (s *Scheduler) computeAll(ctx context.Context, month time.Time) (RunSummary, error) {
	summary := RunSummary{Month: month}

	kinds := []partnerdomain.Kind{
		partnerdomain.KindLocation,
		partnerdomain.KindReferral,
		partnerdomain.KindChannel,
		partnerdomain.KindRelationship,
	}

	for _, kind := range kinds {
		pageToken := ""
		for {
			resp, err := s.partners.List(ctx, partnerdomain.ListPartnerRequest{
				Kind:      kind,
				Status:    partnerdomain.StatusActive,
				PageToken: pageToken,
				PageSize:  s.cfg.PageSize,
			})
			if err != nil {
				return summary, err
			}

			for _, partner := range resp.Partners {
				if partner.StructureType == "" {
					summary.Skipped++
					continue
				}
				if err := s.computeOne(ctx, kind, partner, month, &summary); err != nil {
					return summary, err
				}
			}

			if !resp.HasMore || resp.NextPageToken == "" {
				break
			}
			pageToken = resp.NextPageToken
		}
	}

	return summary, nil
}

func (s *Scheduler) computeOne(ctx context.Context, kind partnerdomain.Kind, partner partnerdomain.Partner, month time.Time, summary *RunSummary) error {
	req := commissiondomain.CalculateRequest{
		PartnerID:   partner.ID.String(),
		PartnerType: string(kind),
		Month:       month.Format("2006-01"),
	}

	needsBasis := partner.StructureType == partnerdomain.StructurePercentage ||
		partner.StructureType == partnerdomain.StructureHybrid
	if needsBasis && kind == partnerdomain.KindLocation {
		basis, err := s.venues.RevenueBasisForMonth(ctx, partner.ID, month)
		if err != nil {
			s.log.Warn("revenue rollup unavailable",
				zap.String("partner_id", partner.ID.String()),
				zap.Error(err),
			)
		} else if basis.IsPositive() {
			req.RevenueBasis = &basis
		}
	}

	_, err := s.commissions.Calculate(ctx, req)
	if err == commissiondomain.ErrMissingRevenueBasis {
		// Percentage partners with no recorded revenue are deferred, not fatal.
		s.log.Info("skipping partner without revenue basis",
			zap.String("partner_id", partner.ID.String()),
			zap.Time("month", month),
		)
		summary.Skipped++
		return nil
	}
	if err != nil {
		return err
	}

	summary.Computed++
	return nil
}
