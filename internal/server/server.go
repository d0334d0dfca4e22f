package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smcatl/skyyield-backend/internal/audit"
	auditdomain "github.com/smcatl/skyyield-backend/internal/audit/domain"
	"github.com/smcatl/skyyield-backend/internal/clock"
	"github.com/smcatl/skyyield-backend/internal/commission"
	commissiondomain "github.com/smcatl/skyyield-backend/internal/commission/domain"
	"github.com/smcatl/skyyield-backend/internal/config"
	obsmetrics "github.com/smcatl/skyyield-backend/internal/observability/metrics"
	"github.com/smcatl/skyyield-backend/internal/partner"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
	"github.com/smcatl/skyyield-backend/internal/payout"
	payoutservice "github.com/smcatl/skyyield-backend/internal/payout/service"
	"github.com/smcatl/skyyield-backend/internal/pipeline"
	pipelinedomain "github.com/smcatl/skyyield-backend/internal/pipeline/domain"
	"github.com/smcatl/skyyield-backend/internal/scheduler"
	"github.com/smcatl/skyyield-backend/internal/venue"
	venuedomain "github.com/smcatl/skyyield-backend/internal/venue/domain"
)

var Module = fx.Module("http.server",
	obsmetrics.Module,
	fx.Provide(registerGin),
	audit.Module,
	partner.Module,
	commission.Module,
	pipeline.Module,
	venue.Module,
	payout.Module,
	scheduler.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log.Named("http")))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, log *zap.Logger, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, log, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

// monthRunner is the slice of the scheduler the commission handlers use.
type monthRunner interface {
	ComputeMonth(ctx context.Context, month time.Time) (scheduler.RunSummary, error)
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	partnerSvc    partnerdomain.Service
	commissionSvc commissiondomain.Service
	pipelineSvc   pipelinedomain.Service
	venueSvc      venuedomain.Service
	payoutSvc     *payoutservice.Service
	auditSvc      auditdomain.Service
	scheduler     monthRunner
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	PartnerSvc    partnerdomain.Service
	CommissionSvc commissiondomain.Service
	PipelineSvc   pipelinedomain.Service
	VenueSvc      venuedomain.Service
	PayoutSvc     *payoutservice.Service
	AuditSvc      auditdomain.Service
	Scheduler     *scheduler.Scheduler
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("server"),
		genID:         p.GenID,
		clock:         p.Clock,
		partnerSvc:    p.PartnerSvc,
		commissionSvc: p.CommissionSvc,
		pipelineSvc:   p.PipelineSvc,
		venueSvc:      p.VenueSvc,
		payoutSvc:     p.PayoutSvc,
		auditSvc:      p.AuditSvc,
		scheduler:     p.Scheduler,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Commissions --------
	api.POST("/commissions", s.AdminRequired(), s.CreateCommission)
	api.GET("/commissions", s.AdminRequired(), s.ListCommissions)
	api.GET("/commissions/:id", s.AdminRequired(), s.GetCommissionByDisplayID)
	api.PATCH("/commissions/:id/status", s.AdminRequired(), s.UpdateCommissionStatus)
	api.POST("/commissions/run", s.AdminRequired(), s.RunCommissionMonth)

	// -------- Partners --------
	api.POST("/partners", s.AdminRequired(), s.CreatePartner)
	api.GET("/partners", s.AdminRequired(), s.ListPartners)
	api.GET("/partners/:id", s.AdminRequired(), s.GetPartnerByID)
	api.PUT("/partners/:id/structure", s.AdminRequired(), s.SetPartnerStructure)

	// -------- Applications --------
	// Submission is the public intake form; the rest is back-office.
	api.POST("/applications", s.SubmitApplication)
	api.GET("/applications", s.AdminRequired(), s.ListApplications)
	api.GET("/applications/:id", s.AdminRequired(), s.GetApplicationByID)
	api.POST("/applications/:id/transition", s.AdminRequired(), s.TransitionApplication)

	// -------- Venues & Devices --------
	api.POST("/venues", s.AdminRequired(), s.CreateVenue)
	api.GET("/venues", s.AdminRequired(), s.ListVenues)
	api.GET("/venues/:id", s.AdminRequired(), s.GetVenueByID)
	api.POST("/venues/:id/devices", s.AdminRequired(), s.CreateDevice)
	api.PATCH("/devices/:id/status", s.AdminRequired(), s.SetDeviceStatus)
	api.POST("/devices/:id/revenue", s.AdminRequired(), s.RecordDeviceRevenue)

	// -------- Payout Webhooks --------
	api.POST("/payouts/webhooks/:provider", s.HandlePayoutWebhook)

	// -------- Audit --------
	api.GET("/audit", s.AdminRequired(), s.ListAuditLogs)
}
