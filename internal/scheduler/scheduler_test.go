package scheduler

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/smcatl/skyyield-backend/internal/clock"
	commissiondomain "github.com/smcatl/skyyield-backend/internal/commission/domain"
	commissionrepository "github.com/smcatl/skyyield-backend/internal/commission/repository"
	commissionservice "github.com/smcatl/skyyield-backend/internal/commission/service"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
	partnerrepository "github.com/smcatl/skyyield-backend/internal/partner/repository"
	partnerservice "github.com/smcatl/skyyield-backend/internal/partner/service"
	venuedomain "github.com/smcatl/skyyield-backend/internal/venue/domain"
	venuerepository "github.com/smcatl/skyyield-backend/internal/venue/repository"
	venueservice "github.com/smcatl/skyyield-backend/internal/venue/service"
)

const testSchema = `
CREATE TABLE location_partners (
	id INTEGER PRIMARY KEY,
	company_name TEXT NOT NULL,
	contact_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	referred_by_partner_id INTEGER,
	activation_date DATETIME,
	structure_type TEXT NOT NULL DEFAULT '',
	flat_fee_monthly NUMERIC NOT NULL DEFAULT 0,
	percentage NUMERIC NOT NULL DEFAULT 0,
	per_referral_amount NUMERIC NOT NULL DEFAULT 0,
	metadata TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE referral_partners (
	id INTEGER PRIMARY KEY,
	company_name TEXT NOT NULL,
	contact_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	referred_by_partner_id INTEGER,
	activation_date DATETIME,
	structure_type TEXT NOT NULL DEFAULT '',
	flat_fee_monthly NUMERIC NOT NULL DEFAULT 0,
	percentage NUMERIC NOT NULL DEFAULT 0,
	per_referral_amount NUMERIC NOT NULL DEFAULT 0,
	metadata TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE channel_partners (
	id INTEGER PRIMARY KEY,
	company_name TEXT NOT NULL,
	contact_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	referred_by_partner_id INTEGER,
	activation_date DATETIME,
	structure_type TEXT NOT NULL DEFAULT '',
	flat_fee_monthly NUMERIC NOT NULL DEFAULT 0,
	percentage NUMERIC NOT NULL DEFAULT 0,
	per_referral_amount NUMERIC NOT NULL DEFAULT 0,
	metadata TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE relationship_partners (
	id INTEGER PRIMARY KEY,
	company_name TEXT NOT NULL,
	contact_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'pending',
	referred_by_partner_id INTEGER,
	activation_date DATETIME,
	structure_type TEXT NOT NULL DEFAULT '',
	flat_fee_monthly NUMERIC NOT NULL DEFAULT 0,
	percentage NUMERIC NOT NULL DEFAULT 0,
	per_referral_amount NUMERIC NOT NULL DEFAULT 0,
	metadata TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE monthly_commissions (
	id INTEGER PRIMARY KEY,
	display_id TEXT NOT NULL UNIQUE,
	recipient_type TEXT NOT NULL,
	location_partner_id INTEGER,
	referral_partner_id INTEGER,
	channel_partner_id INTEGER,
	relationship_partner_id INTEGER,
	commission_month DATETIME NOT NULL,
	amount NUMERIC NOT NULL,
	calculation_method TEXT NOT NULL,
	calculation_details TEXT NOT NULL DEFAULT '',
	revenue_basis NUMERIC,
	notes TEXT NOT NULL DEFAULT '',
	payment_status TEXT NOT NULL DEFAULT 'pending',
	payment_date DATETIME,
	payment_method TEXT,
	payment_reference TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE commission_id_counters (
	year INTEGER PRIMARY KEY,
	last_seq INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE venues (
	id INTEGER PRIMARY KEY,
	location_partner_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	state TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE devices (
	id INTEGER PRIMARY KEY,
	venue_id INTEGER NOT NULL,
	serial TEXT NOT NULL UNIQUE,
	model TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'offline',
	installed_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE device_revenue (
	id INTEGER PRIMARY KEY,
	device_id INTEGER NOT NULL,
	revenue_month DATETIME NOT NULL,
	amount NUMERIC NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE (device_id, revenue_month)
);
CREATE TABLE commission_runs (
	id INTEGER PRIMARY KEY,
	run_month DATETIME NOT NULL UNIQUE,
	computed INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

type fixture struct {
	db          *gorm.DB
	clock       *clock.FakeClock
	partners    partnerdomain.Service
	commissions commissiondomain.Service
	venues      venuedomain.Service
	scheduler   *Scheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(testSchema).Error)

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC))

	partners := partnerservice.New(partnerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  partnerrepository.Provide(),
	})
	commissions := commissionservice.New(commissionservice.Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    fake,
		Repo:     commissionrepository.Provide(),
		Partners: partners,
	})
	venues := venueservice.New(venueservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  venuerepository.Provide(),
	})

	sched, err := New(Params{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       fake,
		Partners:    partners,
		Commissions: commissions,
		Venues:      venues,
	})
	require.NoError(t, err)

	return &fixture{
		db:          db,
		clock:       fake,
		partners:    partners,
		commissions: commissions,
		venues:      venues,
		scheduler:   sched,
	}
}

func (f *fixture) activePartner(t *testing.T, kind partnerdomain.Kind, name string, structure partnerdomain.SetStructureRequest) partnerdomain.Partner {
	t.Helper()

	created, err := f.partners.Create(context.Background(), partnerdomain.CreatePartnerRequest{
		Kind:        kind,
		CompanyName: name,
		Email:       name + "@example.com",
	})
	require.NoError(t, err)

	if structure.StructureType != "" {
		structure.Kind = kind
		structure.ID = created.ID.String()
		_, err = f.partners.SetStructure(context.Background(), structure)
		require.NoError(t, err)
	}

	activated, err := f.partners.Activate(context.Background(), partnerdomain.ActivatePartnerRequest{
		Kind: kind,
		ID:   created.ID.String(),
	})
	require.NoError(t, err)
	return activated
}

func (f *fixture) commissionCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&commissiondomain.Record{}).Count(&count).Error)
	return count
}

func TestTickOnlyRunsOnFirstOfMonth(t *testing.T) {
	f := newFixture(t)
	f.activePartner(t, partnerdomain.KindLocation, "pier-9", partnerdomain.SetStructureRequest{
		StructureType:  partnerdomain.StructureFlatFee,
		FlatFeeMonthly: dec("100"),
	})

	f.clock.Set(time.Date(2026, 3, 15, 2, 0, 0, 0, time.UTC))
	require.NoError(t, f.scheduler.Tick(context.Background()))
	assert.Equal(t, int64(0), f.commissionCount(t))

	var runs int64
	require.NoError(t, f.db.Model(&monthlyRun{}).Count(&runs).Error)
	assert.Equal(t, int64(0), runs)
}

func TestTickComputesPreviousMonthOnce(t *testing.T) {
	f := newFixture(t)
	partner := f.activePartner(t, partnerdomain.KindLocation, "pier-9", partnerdomain.SetStructureRequest{
		StructureType:  partnerdomain.StructureFlatFee,
		FlatFeeMonthly: dec("100"),
	})

	require.NoError(t, f.scheduler.Tick(context.Background()))
	assert.Equal(t, int64(1), f.commissionCount(t))

	var rec commissiondomain.Record
	require.NoError(t, f.db.Take(&rec).Error)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), rec.CommissionMonth)
	require.NotNil(t, rec.LocationPartnerID)
	assert.Equal(t, partner.ID, *rec.LocationPartnerID)

	// A later tick the same day must not duplicate the batch.
	require.NoError(t, f.scheduler.Tick(context.Background()))
	assert.Equal(t, int64(1), f.commissionCount(t))
}

func TestRunUsesVenueRevenueAsBasis(t *testing.T) {
	f := newFixture(t)
	partner := f.activePartner(t, partnerdomain.KindLocation, "harborview", partnerdomain.SetStructureRequest{
		StructureType: partnerdomain.StructurePercentage,
		Percentage:    dec("10"),
	})

	venue, err := f.venues.CreateVenue(context.Background(), venuedomain.CreateVenueRequest{
		LocationPartnerID: partner.ID.String(),
		Name:              "Harborview Cafe",
	})
	require.NoError(t, err)

	device, err := f.venues.CreateDevice(context.Background(), venuedomain.CreateDeviceRequest{
		VenueID: venue.ID.String(),
		Serial:  "SN-1001",
	})
	require.NoError(t, err)

	_, err = f.venues.RecordRevenue(context.Background(), venuedomain.RecordRevenueRequest{
		DeviceID: device.ID.String(),
		Month:    "2026-02",
		Amount:   dec("1500"),
	})
	require.NoError(t, err)

	summary, err := f.scheduler.ComputeMonth(context.Background(), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Computed)
	assert.Equal(t, 0, summary.Skipped)

	var rec commissiondomain.Record
	require.NoError(t, f.db.Take(&rec).Error)
	assert.True(t, rec.Amount.Equal(dec("150")), "got %s", rec.Amount)
	require.NotNil(t, rec.RevenueBasis)
	assert.True(t, rec.RevenueBasis.Equal(dec("1500")))
}

func TestRunSkipsPercentagePartnerWithoutRevenue(t *testing.T) {
	f := newFixture(t)
	f.activePartner(t, partnerdomain.KindLocation, "no-revenue", partnerdomain.SetStructureRequest{
		StructureType: partnerdomain.StructurePercentage,
		Percentage:    dec("10"),
	})

	summary, err := f.scheduler.ComputeMonth(context.Background(), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Computed)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, int64(0), f.commissionCount(t))
}

func TestRunSkipsUnconfiguredPartners(t *testing.T) {
	f := newFixture(t)
	f.activePartner(t, partnerdomain.KindChannel, "no-structure", partnerdomain.SetStructureRequest{})
	f.activePartner(t, partnerdomain.KindChannel, "configured", partnerdomain.SetStructureRequest{
		StructureType:  partnerdomain.StructureFlatFee,
		FlatFeeMonthly: dec("40"),
	})

	summary, err := f.scheduler.ComputeMonth(context.Background(), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Computed)
	assert.Equal(t, 1, summary.Skipped)
}

func TestComputeMonthBypassesRunGuard(t *testing.T) {
	f := newFixture(t)
	f.activePartner(t, partnerdomain.KindLocation, "pier-9", partnerdomain.SetStructureRequest{
		StructureType:  partnerdomain.StructureFlatFee,
		FlatFeeMonthly: dec("100"),
	})

	month := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.scheduler.RunMonth(context.Background(), month))
	assert.Equal(t, int64(1), f.commissionCount(t))

	// Manual recalculation is append-only.
	_, err := f.scheduler.ComputeMonth(context.Background(), month)
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.commissionCount(t))
}

func TestRunPaginatesThroughAllActivePartners(t *testing.T) {
	f := newFixture(t)
	for i := 0; i < 5; i++ {
		f.activePartner(t, partnerdomain.KindLocation, fmt.Sprintf("hotspot-%d", i), partnerdomain.SetStructureRequest{
			StructureType:  partnerdomain.StructureFlatFee,
			FlatFeeMonthly: dec("100"),
		})
	}

	node, err := snowflake.NewNode(14)
	require.NoError(t, err)

	// Page size smaller than the partner count forces the batch across
	// multiple list pages.
	paged, err := New(Params{
		DB:          f.db,
		Log:         zaptest.NewLogger(t),
		GenID:       node,
		Clock:       f.clock,
		Partners:    f.partners,
		Commissions: f.commissions,
		Venues:      f.venues,
		Config:      Config{PageSize: 2},
	})
	require.NoError(t, err)

	summary, err := paged.ComputeMonth(context.Background(), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Computed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, int64(5), f.commissionCount(t))
}
