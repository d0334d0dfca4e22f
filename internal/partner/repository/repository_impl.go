package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smcatl/skyyield-backend/internal/partner/domain"
	"github.com/smcatl/skyyield-backend/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, kind domain.Kind, partner *domain.Partner) error {
	table, ok := kind.Table()
	if !ok {
		return domain.ErrInvalidKind
	}
	return db.WithContext(ctx).Table(table).Create(partner).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) (*domain.Partner, error) {
	table, ok := kind.Table()
	if !ok {
		return nil, domain.ErrInvalidKind
	}
	var partner domain.Partner
	err := db.WithContext(ctx).Table(table).Where("id = ?", id).Take(&partner).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	partner.Kind = kind
	return &partner, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, kind domain.Kind, filter domain.ListFilter, page pagination.Pagination) ([]*domain.Partner, error) {
	table, ok := kind.Table()
	if !ok {
		return nil, domain.ErrInvalidKind
	}

	stmt := db.WithContext(ctx).Table(table)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Email != "" {
		stmt = stmt.Where("email = ?", filter.Email)
	}
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err == nil && cursor.CreatedAt != "" {
			if ts, perr := time.Parse(time.RFC3339Nano, cursor.CreatedAt); perr == nil {
				// Tie-break on id so rows sharing a created_at still page
				// through, matching the created_at desc, id desc order.
				if id, ierr := snowflake.ParseString(cursor.ID); ierr == nil && id != 0 {
					stmt = stmt.Where("created_at < ? OR (created_at = ? AND id < ?)", ts, ts, id)
				} else {
					stmt = stmt.Where("created_at < ?", ts)
				}
			}
		}
	}
	if page.PageSize > 0 {
		stmt = stmt.Limit(page.PageSize + 1)
	}

	var partners []*domain.Partner
	if err := stmt.Order("created_at desc, id desc").Find(&partners).Error; err != nil {
		return nil, err
	}
	for _, p := range partners {
		p.Kind = kind
	}
	return partners, nil
}

func (r *repo) UpdateStructure(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID, update domain.StructureUpdate) error {
	table, ok := kind.Table()
	if !ok {
		return domain.ErrInvalidKind
	}
	return db.WithContext(ctx).Table(table).
		Where("id = ?", id).
		Updates(map[string]any{
			"structure_type":      update.StructureType,
			"flat_fee_monthly":    update.FlatFeeMonthly,
			"percentage":          update.Percentage,
			"per_referral_amount": update.PerReferralAmount,
			"updated_at":          time.Now().UTC(),
		}).Error
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID, status string, activation *time.Time) error {
	table, ok := kind.Table()
	if !ok {
		return domain.ErrInvalidKind
	}
	values := map[string]any{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if activation != nil {
		values["activation_date"] = *activation
	}
	return db.WithContext(ctx).Table(table).Where("id = ?", id).Updates(values).Error
}

func (r *repo) CountActiveReferrals(ctx context.Context, db *gorm.DB, referrerID snowflake.ID, from, to time.Time) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Table("location_partners").
		Where("referred_by_partner_id = ?", referrerID).
		Where("status = ?", domain.StatusActive).
		Where("activation_date >= ? AND activation_date < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) DisplayName(ctx context.Context, db *gorm.DB, kind domain.Kind, id snowflake.ID) (string, error) {
	table, ok := kind.Table()
	if !ok {
		return "", domain.ErrInvalidKind
	}
	var name string
	err := db.WithContext(ctx).Table(table).
		Select("company_name").
		Where("id = ?", id).
		Scan(&name).Error
	if err != nil {
		return "", err
	}
	return name, nil
}
