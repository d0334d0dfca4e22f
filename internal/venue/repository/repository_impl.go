package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smcatl/skyyield-backend/internal/venue/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertVenue(ctx context.Context, db *gorm.DB, venue *domain.Venue) error {
	return db.WithContext(ctx).Create(venue).Error
}

func (r *repo) FindVenueByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Venue, error) {
	var venue domain.Venue
	err := db.WithContext(ctx).Where("id = ?", id).Take(&venue).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *repo) ListVenues(ctx context.Context, db *gorm.DB, locationPartnerID *snowflake.ID) ([]*domain.Venue, error) {
	stmt := db.WithContext(ctx).Model(&domain.Venue{})
	if locationPartnerID != nil {
		stmt = stmt.Where("location_partner_id = ?", *locationPartnerID)
	}
	var venues []*domain.Venue
	if err := stmt.Order("created_at desc, id desc").Find(&venues).Error; err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *repo) InsertDevice(ctx context.Context, db *gorm.DB, device *domain.Device) error {
	return db.WithContext(ctx).Create(device).Error
}

func (r *repo) FindDeviceByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Device, error) {
	var device domain.Device
	err := db.WithContext(ctx).Where("id = ?", id).Take(&device).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

func (r *repo) ListDevices(ctx context.Context, db *gorm.DB, venueID snowflake.ID) ([]*domain.Device, error) {
	var devices []*domain.Device
	err := db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("created_at asc").
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *repo) UpdateDeviceStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status string) error {
	return db.WithContext(ctx).
		Model(&domain.Device{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     status,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *repo) UpsertRevenue(ctx context.Context, db *gorm.DB, rev *domain.DeviceRevenue) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}, {Name: "revenue_month"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount"}),
		}).
		Create(rev).Error
}

func (r *repo) SumRevenueForPartner(ctx context.Context, db *gorm.DB, locationPartnerID snowflake.ID, month time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.WithContext(ctx).
		Table("device_revenue AS dr").
		Joins("JOIN devices d ON dr.device_id = d.id").
		Joins("JOIN venues v ON d.venue_id = v.id").
		Where("v.location_partner_id = ?", locationPartnerID).
		Where("dr.revenue_month = ?", month).
		Select("COALESCE(SUM(dr.amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
