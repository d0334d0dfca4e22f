package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Device lifecycle states.
const (
	DeviceOnline  = "online"
	DeviceOffline = "offline"
	DeviceRetired = "retired"
)

// Venue is a physical site owned by a location partner.
type Venue struct {
	ID                snowflake.ID `gorm:"primaryKey" json:"id"`
	LocationPartnerID snowflake.ID `gorm:"not null;index" json:"location_partner_id"`
	Name              string       `gorm:"not null" json:"name"`
	Address           string       `json:"address,omitempty"`
	City              string       `json:"city,omitempty"`
	State             string       `json:"state,omitempty"`
	CreatedAt         time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time    `gorm:"not null" json:"updated_at"`
}

func (Venue) TableName() string {
	return "venues"
}

// Device is a hotspot unit installed at a venue.
type Device struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	VenueID     snowflake.ID `gorm:"not null;index" json:"venue_id"`
	Serial      string       `gorm:"uniqueIndex;not null" json:"serial"`
	Model       string       `json:"model,omitempty"`
	Status      string       `gorm:"not null;default:'offline'" json:"status"`
	InstalledAt *time.Time   `json:"installed_at,omitempty"`
	CreatedAt   time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null" json:"updated_at"`
}

func (Device) TableName() string {
	return "devices"
}

// DeviceRevenue is the recorded revenue of one device for one month. It feeds
// the revenue basis used by percentage and hybrid commission runs.
type DeviceRevenue struct {
	ID           snowflake.ID    `gorm:"primaryKey" json:"id"`
	DeviceID     snowflake.ID    `gorm:"not null;index:idx_device_revenue_month,unique" json:"device_id"`
	RevenueMonth time.Time       `gorm:"not null;index:idx_device_revenue_month,unique" json:"revenue_month"`
	Amount       decimal.Decimal `gorm:"type:decimal(20,6);not null" json:"amount"`
	CreatedAt    time.Time       `gorm:"not null" json:"created_at"`
}

func (DeviceRevenue) TableName() string {
	return "device_revenue"
}
