package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Kind identifies which partner table a record lives in.
type Kind string

const (
	KindLocation     Kind = "location_partner"
	KindReferral     Kind = "referral_partner"
	KindChannel      Kind = "channel_partner"
	KindRelationship Kind = "relationship_partner"
)

// Table maps a partner kind to its storage table. Dispatch is an explicit
// switch rather than string concatenation so an unknown kind is a hard error.
func (k Kind) Table() (string, bool) {
	switch k {
	case KindLocation:
		return "location_partners", true
	case KindReferral:
		return "referral_partners", true
	case KindChannel:
		return "channel_partners", true
	case KindRelationship:
		return "relationship_partners", true
	default:
		return "", false
	}
}

func ParseKind(raw string) (Kind, bool) {
	switch Kind(raw) {
	case KindLocation, KindReferral, KindChannel, KindRelationship:
		return Kind(raw), true
	default:
		return "", false
	}
}

const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Commission structure types stored on a partner row.
const (
	StructureFlatFee     = "flat_fee"
	StructurePercentage  = "percentage"
	StructurePerReferral = "per_referral"
	StructureHybrid      = "hybrid"
)

// Partner is the shared row shape of the four partner tables. The kind is
// carried out of band; it selects the table, never a column.
type Partner struct {
	ID                  snowflake.ID      `gorm:"primaryKey" json:"id"`
	CompanyName         string            `gorm:"not null" json:"company_name"`
	ContactName         string            `json:"contact_name"`
	Email               string            `gorm:"not null" json:"email"`
	Phone               string            `json:"phone,omitempty"`
	Status              string            `gorm:"not null;default:'pending'" json:"status"`
	ReferredByPartnerID *snowflake.ID     `json:"referred_by_partner_id,omitempty"`
	ActivationDate      *time.Time        `json:"activation_date,omitempty"`
	StructureType       string            `gorm:"column:structure_type" json:"structure_type,omitempty"`
	FlatFeeMonthly      decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0" json:"flat_fee_monthly"`
	Percentage          decimal.Decimal   `gorm:"type:decimal(10,4);not null;default:0" json:"percentage"`
	PerReferralAmount   decimal.Decimal   `gorm:"type:decimal(20,2);not null;default:0" json:"per_referral_amount"`
	Metadata            datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt           time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"not null" json:"updated_at"`

	Kind Kind `gorm:"-" json:"partner_type"`
}

type ListFilter struct {
	Status string
	Email  string
}

type StructureUpdate struct {
	StructureType     string
	FlatFeeMonthly    decimal.Decimal
	Percentage        decimal.Decimal
	PerReferralAmount decimal.Decimal
}
