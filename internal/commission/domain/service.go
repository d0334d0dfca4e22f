package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CalculateRequest struct {
	PartnerID    string
	PartnerType  string
	Month        string
	RevenueBasis *decimal.Decimal
}

type CreateRecordRequest struct {
	RecipientType      string
	PartnerID          string
	CommissionMonth    string
	CommissionAmount   decimal.Decimal
	CalculationMethod  string
	CalculationDetails string
	RevenueBasis       *decimal.Decimal
	Notes              string
}

type UpdateStatusRequest struct {
	DisplayID        string
	PaymentStatus    string
	PaymentDate      string
	PaymentMethod    string
	PaymentReference string
}

type GetRecordRequest struct {
	DisplayID string
}

type ListRecordsRequest struct {
	Month         string
	Status        string
	RecipientType string
}

type ListRecordsResponse struct {
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`
}

type Service interface {
	Calculate(context.Context, CalculateRequest) (Record, error)
	Create(context.Context, CreateRecordRequest) (Record, error)
	UpdateStatus(context.Context, UpdateStatusRequest) (Record, error)
	GetByDisplayID(context.Context, GetRecordRequest) (Record, error)
	List(context.Context, ListRecordsRequest) (ListRecordsResponse, error)
}

var (
	ErrMissingRevenueBasis = errors.New("revenue_basis_required")
	ErrNoStructure         = errors.New("no_commission_structure")
	ErrUnknownPartnerType  = errors.New("unknown_partner_type")
	ErrInvalidMonth        = errors.New("invalid_commission_month")
	ErrInvalidAmount       = errors.New("invalid_commission_amount")
	ErrInvalidStatus       = errors.New("invalid_payment_status")
	ErrInvalidTransition   = errors.New("invalid_status_transition")
	ErrMissingID           = errors.New("missing_commission_id")
	ErrInvalidPartnerID    = errors.New("invalid_partner_id")
	ErrPartnerNotFound     = errors.New("partner_not_found")
	ErrNotFound            = errors.New("commission_not_found")
)
