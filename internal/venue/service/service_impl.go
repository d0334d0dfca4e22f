package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smcatl/skyyield-backend/internal/clock"
	commissionservice "github.com/smcatl/skyyield-backend/internal/commission/service"
	"github.com/smcatl/skyyield-backend/internal/venue/domain"
	"github.com/smcatl/skyyield-backend/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("venue.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) CreateVenue(ctx context.Context, req domain.CreateVenueRequest) (domain.Venue, error) {
	partnerID, err := parseID(req.LocationPartnerID)
	if err != nil {
		return domain.Venue{}, domain.ErrInvalidID
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Venue{}, domain.ErrInvalidName
	}

	now := s.clock.Now()
	venue := domain.Venue{
		ID:                s.genID.Generate(),
		LocationPartnerID: partnerID,
		Name:              name,
		Address:           strings.TrimSpace(req.Address),
		City:              strings.TrimSpace(req.City),
		State:             strings.TrimSpace(req.State),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.InsertVenue(ctx, s.db, &venue); err != nil {
		return domain.Venue{}, err
	}
	return venue, nil
}

func (s *Service) GetVenue(ctx context.Context, req domain.GetVenueRequest) (domain.VenueWithDevices, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return domain.VenueWithDevices{}, domain.ErrInvalidID
	}

	venue, err := s.repo.FindVenueByID(ctx, s.db, id)
	if err != nil {
		return domain.VenueWithDevices{}, err
	}
	if venue == nil {
		return domain.VenueWithDevices{}, domain.ErrNotFound
	}

	items, err := s.repo.ListDevices(ctx, s.db, id)
	if err != nil {
		return domain.VenueWithDevices{}, err
	}

	devices := make([]domain.Device, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		devices = append(devices, *item)
	}

	return domain.VenueWithDevices{Venue: *venue, Devices: devices}, nil
}

func (s *Service) ListVenues(ctx context.Context, req domain.ListVenuesRequest) ([]domain.Venue, error) {
	var partnerID *snowflake.ID
	if raw := strings.TrimSpace(req.LocationPartnerID); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			return nil, domain.ErrInvalidID
		}
		partnerID = &id
	}

	items, err := s.repo.ListVenues(ctx, s.db, partnerID)
	if err != nil {
		return nil, err
	}

	venues := make([]domain.Venue, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		venues = append(venues, *item)
	}
	return venues, nil
}

func (s *Service) CreateDevice(ctx context.Context, req domain.CreateDeviceRequest) (domain.Device, error) {
	venueID, err := parseID(req.VenueID)
	if err != nil {
		return domain.Device{}, domain.ErrInvalidID
	}

	serial := strings.TrimSpace(req.Serial)
	if serial == "" {
		return domain.Device{}, domain.ErrInvalidSerial
	}

	venue, err := s.repo.FindVenueByID(ctx, s.db, venueID)
	if err != nil {
		return domain.Device{}, err
	}
	if venue == nil {
		return domain.Device{}, domain.ErrNotFound
	}

	now := s.clock.Now()
	device := domain.Device{
		ID:        s.genID.Generate(),
		VenueID:   venueID,
		Serial:    serial,
		Model:     strings.TrimSpace(req.Model),
		Status:    domain.DeviceOffline,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.InsertDevice(ctx, s.db, &device); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Device{}, domain.ErrDuplicateSerial
		}
		return domain.Device{}, err
	}
	return device, nil
}

func (s *Service) SetDeviceStatus(ctx context.Context, req domain.SetDeviceStatusRequest) (domain.Device, error) {
	id, err := parseID(req.DeviceID)
	if err != nil {
		return domain.Device{}, domain.ErrInvalidID
	}

	status := strings.TrimSpace(req.Status)
	switch status {
	case domain.DeviceOnline, domain.DeviceOffline, domain.DeviceRetired:
	default:
		return domain.Device{}, domain.ErrInvalidStatus
	}

	device, err := s.repo.FindDeviceByID(ctx, s.db, id)
	if err != nil {
		return domain.Device{}, err
	}
	if device == nil {
		return domain.Device{}, domain.ErrDeviceNotFound
	}

	if err := s.repo.UpdateDeviceStatus(ctx, s.db, id, status); err != nil {
		return domain.Device{}, err
	}
	device.Status = status
	return *device, nil
}

func (s *Service) RecordRevenue(ctx context.Context, req domain.RecordRevenueRequest) (domain.DeviceRevenue, error) {
	id, err := parseID(req.DeviceID)
	if err != nil {
		return domain.DeviceRevenue{}, domain.ErrInvalidID
	}

	month, err := commissionservice.ParseMonth(req.Month)
	if err != nil {
		return domain.DeviceRevenue{}, err
	}

	if req.Amount.IsNegative() {
		return domain.DeviceRevenue{}, domain.ErrInvalidAmount
	}

	device, err := s.repo.FindDeviceByID(ctx, s.db, id)
	if err != nil {
		return domain.DeviceRevenue{}, err
	}
	if device == nil {
		return domain.DeviceRevenue{}, domain.ErrDeviceNotFound
	}

	rev := domain.DeviceRevenue{
		ID:           s.genID.Generate(),
		DeviceID:     id,
		RevenueMonth: month,
		Amount:       req.Amount,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.repo.UpsertRevenue(ctx, s.db, &rev); err != nil {
		return domain.DeviceRevenue{}, err
	}
	return rev, nil
}

func (s *Service) RevenueBasisForMonth(ctx context.Context, locationPartnerID snowflake.ID, month time.Time) (decimal.Decimal, error) {
	return s.repo.SumRevenueForPartner(ctx, s.db, locationPartnerID, month)
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
