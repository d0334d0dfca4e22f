package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	InsertVenue(ctx context.Context, db *gorm.DB, venue *Venue) error
	FindVenueByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Venue, error)
	ListVenues(ctx context.Context, db *gorm.DB, locationPartnerID *snowflake.ID) ([]*Venue, error)
	InsertDevice(ctx context.Context, db *gorm.DB, device *Device) error
	FindDeviceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Device, error)
	ListDevices(ctx context.Context, db *gorm.DB, venueID snowflake.ID) ([]*Device, error)
	UpdateDeviceStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error
	UpsertRevenue(ctx context.Context, db *gorm.DB, rev *DeviceRevenue) error

	// SumRevenueForPartner totals device revenue across a location partner's
	// venues for one month.
	SumRevenueForPartner(ctx context.Context, db *gorm.DB, locationPartnerID snowflake.ID, month time.Time) (decimal.Decimal, error)
}

type CreateVenueRequest struct {
	LocationPartnerID string
	Name              string
	Address           string
	City              string
	State             string
}

type CreateDeviceRequest struct {
	VenueID string
	Serial  string
	Model   string
}

type RecordRevenueRequest struct {
	DeviceID string
	Month    string
	Amount   decimal.Decimal
}

type SetDeviceStatusRequest struct {
	DeviceID string
	Status   string
}

type ListVenuesRequest struct {
	LocationPartnerID string
}

type GetVenueRequest struct {
	ID string
}

type VenueWithDevices struct {
	Venue   Venue    `json:"venue"`
	Devices []Device `json:"devices"`
}

type Service interface {
	CreateVenue(context.Context, CreateVenueRequest) (Venue, error)
	GetVenue(context.Context, GetVenueRequest) (VenueWithDevices, error)
	ListVenues(context.Context, ListVenuesRequest) ([]Venue, error)
	CreateDevice(context.Context, CreateDeviceRequest) (Device, error)
	SetDeviceStatus(context.Context, SetDeviceStatusRequest) (Device, error)
	RecordRevenue(context.Context, RecordRevenueRequest) (DeviceRevenue, error)

	RevenueBasisForMonth(ctx context.Context, locationPartnerID snowflake.ID, month time.Time) (decimal.Decimal, error)
}

var (
	ErrInvalidName     = errors.New("invalid_venue_name")
	ErrInvalidID       = errors.New("invalid_venue_id")
	ErrInvalidSerial   = errors.New("invalid_device_serial")
	ErrInvalidStatus   = errors.New("invalid_device_status")
	ErrInvalidAmount   = errors.New("invalid_revenue_amount")
	ErrDuplicateSerial = errors.New("duplicate_device_serial")
	ErrNotFound        = errors.New("venue_not_found")
	ErrDeviceNotFound  = errors.New("device_not_found")
)
