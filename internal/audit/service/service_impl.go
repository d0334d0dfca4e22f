package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smcatl/skyyield-backend/internal/audit/domain"
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
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) AuditLog(ctx context.Context, actor, action, targetType string, targetID *string, metadata map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}

	actor = strings.TrimSpace(actor)
	if actor == "" {
		actor = "admin"
	}
	targetType = strings.TrimSpace(targetType)
	if targetType == "" {
		targetType = "unknown"
	}

	payload := map[string]any{}
	for key, value := range metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		Actor:      actor,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListAuditLogRequest) (auditdomain.ListAuditLogResponse, error) {
	items, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		Action:     strings.TrimSpace(req.Action),
		TargetType: strings.TrimSpace(req.TargetType),
		Limit:      req.Limit,
	})
	if err != nil {
		return auditdomain.ListAuditLogResponse{}, err
	}

	logs := make([]auditdomain.AuditLog, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		logs = append(logs, *item)
	}
	return auditdomain.ListAuditLogResponse{AuditLogs: logs}, nil
}
