package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AuditLog struct {
	ID         snowflake.ID      `gorm:"primaryKey" json:"id"`
	Actor      string            `gorm:"not null" json:"actor"`
	Action     string            `gorm:"not null;index" json:"action"`
	TargetType string            `gorm:"not null" json:"target_type"`
	TargetID   *string           `json:"target_id,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *AuditLog) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*AuditLog, error)
}

type ListFilter struct {
	Action     string
	TargetType string
	Limit      int
}

type ListAuditLogRequest struct {
	Action     string
	TargetType string
	Limit      int
}

type ListAuditLogResponse struct {
	AuditLogs []AuditLog `json:"audit_logs"`
}

type Service interface {
	AuditLog(ctx context.Context, actor, action, targetType string, targetID *string, metadata map[string]any) error
	List(ctx context.Context, req ListAuditLogRequest) (ListAuditLogResponse, error)
}

var ErrInvalidAction = errors.New("invalid_action")
