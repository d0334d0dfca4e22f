package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
)

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Structure is a partner's commission configuration at calculation time.
// Unset numeric fields are zero, never nil.
type Structure struct {
	Type              string
	FlatFeeMonthly    decimal.Decimal
	Percentage        decimal.Decimal
	PerReferralAmount decimal.Decimal
}

// CalcInput carries the optional per-calculation operands. RevenueBasis nil
// means the caller did not supply one, which is distinct from zero.
type CalcInput struct {
	RevenueBasis  *decimal.Decimal
	ReferralCount int64
}

type CalcResult struct {
	Amount  decimal.Decimal
	Method  string
	Details string
}

// Record is one row of monthly_commissions. DisplayID is the human-readable
// identifier (COMM-{year}-{seq}); the snowflake ID is the storage key.
type Record struct {
	ID                    snowflake.ID     `gorm:"primaryKey" json:"id"`
	DisplayID             string           `gorm:"column:display_id;uniqueIndex;not null" json:"display_id"`
	RecipientType         string           `gorm:"not null" json:"recipient_type"`
	LocationPartnerID     *snowflake.ID    `json:"location_partner_id,omitempty"`
	ReferralPartnerID     *snowflake.ID    `json:"referral_partner_id,omitempty"`
	ChannelPartnerID      *snowflake.ID    `json:"channel_partner_id,omitempty"`
	RelationshipPartnerID *snowflake.ID    `json:"relationship_partner_id,omitempty"`
	CommissionMonth       time.Time        `gorm:"not null" json:"commission_month"`
	Amount                decimal.Decimal  `gorm:"type:decimal(20,6);not null" json:"amount"`
	CalculationMethod     string           `gorm:"not null" json:"calculation_method"`
	CalculationDetails    string           `json:"calculation_details"`
	RevenueBasis          *decimal.Decimal `gorm:"type:decimal(20,6)" json:"revenue_basis,omitempty"`
	Notes                 string           `json:"notes,omitempty"`
	PaymentStatus         string           `gorm:"not null;default:'pending'" json:"payment_status"`
	PaymentDate           *time.Time       `json:"payment_date,omitempty"`
	PaymentMethod         *string          `json:"payment_method,omitempty"`
	PaymentReference      *string          `json:"payment_reference,omitempty"`
	CreatedAt             time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time        `gorm:"not null" json:"updated_at"`

	PartnerName string `gorm:"->;-:migration" json:"partner_name,omitempty"`
}

func (Record) TableName() string {
	return "monthly_commissions"
}

// SetRecipient populates exactly one partner foreign key, matching the
// recipient type. Unknown kinds are rejected rather than interpolated.
func (r *Record) SetRecipient(kind partnerdomain.Kind, id snowflake.ID) error {
	r.LocationPartnerID = nil
	r.ReferralPartnerID = nil
	r.ChannelPartnerID = nil
	r.RelationshipPartnerID = nil

	switch kind {
	case partnerdomain.KindLocation:
		r.LocationPartnerID = &id
	case partnerdomain.KindReferral:
		r.ReferralPartnerID = &id
	case partnerdomain.KindChannel:
		r.ChannelPartnerID = &id
	case partnerdomain.KindRelationship:
		r.RelationshipPartnerID = &id
	default:
		return ErrUnknownPartnerType
	}
	r.RecipientType = string(kind)
	return nil
}

// Recipient returns the populated partner reference.
func (r *Record) Recipient() (partnerdomain.Kind, snowflake.ID, bool) {
	switch {
	case r.LocationPartnerID != nil:
		return partnerdomain.KindLocation, *r.LocationPartnerID, true
	case r.ReferralPartnerID != nil:
		return partnerdomain.KindReferral, *r.ReferralPartnerID, true
	case r.ChannelPartnerID != nil:
		return partnerdomain.KindChannel, *r.ChannelPartnerID, true
	case r.RelationshipPartnerID != nil:
		return partnerdomain.KindRelationship, *r.RelationshipPartnerID, true
	default:
		return "", 0, false
	}
}

// Summary aggregates a filtered listing.
type Summary struct {
	TotalRecords int64           `json:"totalRecords"`
	PendingCount int64           `json:"pendingCount"`
	PaidCount    int64           `json:"paidCount"`
	TotalPending decimal.Decimal `json:"totalPending"`
	TotalPaid    decimal.Decimal `json:"totalPaid"`
}

type ListFilter struct {
	Month         *time.Time
	Status        string
	RecipientType string
}

type StatusUpdate struct {
	PaymentStatus    string
	PaymentDate      *time.Time
	PaymentMethod    *string
	PaymentReference *string
}
