package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type CreatePartnerRequest struct {
	Kind                Kind
	CompanyName         string
	ContactName         string
	Email               string
	Phone               string
	ReferredByPartnerID string
}

type GetPartnerRequest struct {
	Kind Kind
	ID   string
}

type ListPartnerRequest struct {
	Kind      Kind
	Status    string
	PageToken string
	PageSize  int
}

type ListPartnerResponse struct {
	Partners      []Partner `json:"partners"`
	NextPageToken string    `json:"next_page_token,omitempty"`
	HasMore       bool      `json:"has_more"`
}

type SetStructureRequest struct {
	Kind              Kind
	ID                string
	StructureType     string
	FlatFeeMonthly    decimal.Decimal
	Percentage        decimal.Decimal
	PerReferralAmount decimal.Decimal
}

type ActivatePartnerRequest struct {
	Kind Kind
	ID   string
}

type Service interface {
	Create(context.Context, CreatePartnerRequest) (Partner, error)
	GetByID(context.Context, GetPartnerRequest) (Partner, error)
	List(context.Context, ListPartnerRequest) (ListPartnerResponse, error)
	SetStructure(context.Context, SetStructureRequest) (Partner, error)
	Activate(context.Context, ActivatePartnerRequest) (Partner, error)

	CountActiveReferrals(ctx context.Context, referrerID snowflake.ID, from, to time.Time) (int64, error)
	DisplayName(ctx context.Context, kind Kind, id snowflake.ID) (string, error)
}

var (
	ErrInvalidKind        = errors.New("invalid_partner_type")
	ErrInvalidCompanyName = errors.New("invalid_company_name")
	ErrInvalidEmail       = errors.New("invalid_email")
	ErrInvalidID          = errors.New("invalid_partner_id")
	ErrInvalidStructure   = errors.New("invalid_commission_structure")
	ErrInvalidPercentage  = errors.New("invalid_percentage")
	ErrNotFound           = errors.New("partner_not_found")
)
