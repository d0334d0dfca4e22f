package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
	"gorm.io/datatypes"
)

// Pipeline stages for a partner application.
const (
	StageApplied   = "applied"
	StageReviewing = "reviewing"
	StageApproved  = "approved"
	StageRejected  = "rejected"
	StageSigned    = "signed"
	StageLive      = "live"
)

// allowedTransitions is the full stage machine. Rejected and live are terminal.
var allowedTransitions = map[string][]string{
	StageApplied:   {StageReviewing, StageRejected},
	StageReviewing: {StageApproved, StageRejected},
	StageApproved:  {StageSigned, StageRejected},
	StageSigned:    {StageLive},
}

// CanTransition reports whether from -> to is a legal stage move.
func CanTransition(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Application is a row of partner_applications.
type Application struct {
	ID              snowflake.ID       `gorm:"primaryKey" json:"id"`
	PartnerType     partnerdomain.Kind `gorm:"column:partner_type;not null" json:"partner_type"`
	CompanyName     string             `gorm:"not null" json:"company_name"`
	ContactName     string             `json:"contact_name"`
	Email           string             `gorm:"not null" json:"email"`
	Phone           string             `json:"phone,omitempty"`
	Message         string             `json:"message,omitempty"`
	Stage           string             `gorm:"not null;default:'applied'" json:"stage"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	PartnerID       *snowflake.ID      `json:"partner_id,omitempty"`
	Metadata        datatypes.JSONMap  `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt       time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null" json:"updated_at"`
}

func (Application) TableName() string {
	return "partner_applications"
}
