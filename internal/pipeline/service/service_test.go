package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/smcatl/skyyield-backend/internal/clock"
	partnerdomain "github.com/smcatl/skyyield-backend/internal/partner/domain"
	partnerrepository "github.com/smcatl/skyyield-backend/internal/partner/repository"
	partnerservice "github.com/smcatl/skyyield-backend/internal/partner/service"
	"github.com/smcatl/skyyield-backend/internal/pipeline/domain"
	"github.com/smcatl/skyyield-backend/internal/pipeline/repository"
)

const testSchema = `
CREATE TABLE partner_applications (
	id INTEGER PRIMARY KEY,
	partner_type TEXT NOT NULL,
	company_name TEXT NOT NULL,
	contact_name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	phone TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	stage TEXT NOT NULL DEFAULT 'applied',
	rejection_reason TEXT NOT NULL DEFAULT '',
	partner_id INTEGER,
	metadata TEXT,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
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
`

type fixture struct {
	db       *gorm.DB
	clock    *clock.FakeClock
	partners partnerdomain.Service
	pipeline domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(testSchema).Error)

	node, err := snowflake.NewNode(2)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	fake := clock.NewFakeClock(time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC))

	partners := partnerservice.New(partnerservice.Params{
		DB:    db,
		Log:   log,
		GenID: node,
		Clock: fake,
		Repo:  partnerrepository.Provide(),
	})

	pipeline := New(Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    fake,
		Repo:     repository.Provide(),
		Partners: partners,
	})

	return &fixture{db: db, clock: fake, partners: partners, pipeline: pipeline}
}

func submit(t *testing.T, f *fixture) domain.Application {
	t.Helper()
	app, err := f.pipeline.Submit(context.Background(), domain.SubmitRequest{
		PartnerType: string(partnerdomain.KindLocation),
		CompanyName: "Harborview Cafe",
		ContactName: "Jess Reyes",
		Email:       "jess@harborview.example",
		Phone:       "555-0100",
		Message:     "Two floors, heavy foot traffic",
	})
	require.NoError(t, err)
	return app
}

func TestSubmitStartsAtApplied(t *testing.T) {
	f := newFixture(t)
	app := submit(t, f)

	assert.Equal(t, domain.StageApplied, app.Stage)
	assert.Equal(t, partnerdomain.KindLocation, app.PartnerType)
	assert.Nil(t, app.PartnerID)
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		req  domain.SubmitRequest
	}{
		{"unknown type", domain.SubmitRequest{PartnerType: "vendor", CompanyName: "X", Email: "x@example.com"}},
		{"missing company", domain.SubmitRequest{PartnerType: string(partnerdomain.KindLocation), Email: "x@example.com"}},
		{"bad email", domain.SubmitRequest{PartnerType: string(partnerdomain.KindLocation), CompanyName: "X", Email: "nope"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.pipeline.Submit(context.Background(), tc.req)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}

func TestTransitionStageMachine(t *testing.T) {
	f := newFixture(t)
	app := submit(t, f)

	move := func(stage string) (domain.Application, error) {
		return f.pipeline.Transition(context.Background(), domain.TransitionRequest{
			ID:    app.ID.String(),
			Stage: stage,
		})
	}

	t.Run("cannot skip review", func(t *testing.T) {
		_, err := move(domain.StageApproved)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("applied to reviewing", func(t *testing.T) {
		got, err := move(domain.StageReviewing)
		require.NoError(t, err)
		assert.Equal(t, domain.StageReviewing, got.Stage)
	})

	t.Run("approval provisions partner", func(t *testing.T) {
		got, err := move(domain.StageApproved)
		require.NoError(t, err)
		require.NotNil(t, got.PartnerID)

		partner, err := f.partners.GetByID(context.Background(), partnerdomain.GetPartnerRequest{
			Kind: partnerdomain.KindLocation,
			ID:   got.PartnerID.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, "Harborview Cafe", partner.CompanyName)
		assert.Equal(t, partnerdomain.StatusPending, partner.Status)
	})

	t.Run("live activates partner", func(t *testing.T) {
		_, err := move(domain.StageSigned)
		require.NoError(t, err)

		got, err := move(domain.StageLive)
		require.NoError(t, err)
		assert.Equal(t, domain.StageLive, got.Stage)

		partner, err := f.partners.GetByID(context.Background(), partnerdomain.GetPartnerRequest{
			Kind: partnerdomain.KindLocation,
			ID:   got.PartnerID.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, partnerdomain.StatusActive, partner.Status)
		require.NotNil(t, partner.ActivationDate)
	})

	t.Run("live is terminal", func(t *testing.T) {
		_, err := move(domain.StageRejected)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestTransitionRejectionStoresReason(t *testing.T) {
	f := newFixture(t)
	app := submit(t, f)

	got, err := f.pipeline.Transition(context.Background(), domain.TransitionRequest{
		ID:              app.ID.String(),
		Stage:           domain.StageRejected,
		RejectionReason: "venue too small",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StageRejected, got.Stage)
	assert.Equal(t, "venue too small", got.RejectionReason)
	assert.Nil(t, got.PartnerID)

	_, err = f.pipeline.Transition(context.Background(), domain.TransitionRequest{
		ID:    app.ID.String(),
		Stage: domain.StageReviewing,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestListFiltersByStage(t *testing.T) {
	f := newFixture(t)
	first := submit(t, f)
	submit(t, f)

	_, err := f.pipeline.Transition(context.Background(), domain.TransitionRequest{
		ID:    first.ID.String(),
		Stage: domain.StageReviewing,
	})
	require.NoError(t, err)

	resp, err := f.pipeline.List(context.Background(), domain.ListRequest{Stage: domain.StageApplied})
	require.NoError(t, err)
	require.Len(t, resp.Applications, 1)

	_, err = f.pipeline.List(context.Background(), domain.ListRequest{Stage: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}
