package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, app *Application) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Application, error)
	List(ctx context.Context, db *gorm.DB, stage string) ([]*Application, error)
	Update(ctx context.Context, db *gorm.DB, app *Application) error
}

type SubmitRequest struct {
	PartnerType string
	CompanyName string
	ContactName string
	Email       string
	Phone       string
	Message     string
}

type TransitionRequest struct {
	ID              string
	Stage           string
	RejectionReason string
}

type GetRequest struct {
	ID string
}

type ListRequest struct {
	Stage string
}

type ListResponse struct {
	Applications []Application `json:"applications"`
}

type Service interface {
	Submit(context.Context, SubmitRequest) (Application, error)
	GetByID(context.Context, GetRequest) (Application, error)
	List(context.Context, ListRequest) (ListResponse, error)
	Transition(context.Context, TransitionRequest) (Application, error)
}

var (
	ErrInvalidRequest    = errors.New("invalid_application")
	ErrInvalidStage      = errors.New("invalid_stage")
	ErrInvalidTransition = errors.New("invalid_stage_transition")
	ErrInvalidID         = errors.New("invalid_application_id")
	ErrNotFound          = errors.New("application_not_found")
)
