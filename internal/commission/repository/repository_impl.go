package repository

import (
	"context"
	"regexp"
	"strconv"
	"time"

	"github.com/smcatl/skyyield-backend/internal/commission/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *domain.Record) error {
	return db.WithContext(ctx).Create(record).Error
}

func (r *repo) FindByDisplayID(ctx context.Context, db *gorm.DB, displayID string) (*domain.Record, error) {
	var record domain.Record
	err := db.WithContext(ctx).
		Where("display_id = ?", displayID).
		Take(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, displayID string, update domain.StatusUpdate) error {
	values := map[string]any{
		"payment_status": update.PaymentStatus,
		"updated_at":     time.Now().UTC(),
	}
	if update.PaymentDate != nil {
		values["payment_date"] = *update.PaymentDate
	}
	if update.PaymentMethod != nil {
		values["payment_method"] = *update.PaymentMethod
	}
	if update.PaymentReference != nil {
		values["payment_reference"] = *update.PaymentReference
	}
	// Compare-and-set on the current status so two settlement paths (admin
	// update and webhook) cannot both claim the same record.
	res := db.WithContext(ctx).
		Model(&domain.Record{}).
		Where("display_id = ? AND payment_status = ?", displayID, domain.StatusPending).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if filter.Month != nil {
		stmt = stmt.Where("mc.commission_month = ?", *filter.Month)
	}
	if filter.Status != "" {
		stmt = stmt.Where("mc.payment_status = ?", filter.Status)
	}
	if filter.RecipientType != "" {
		stmt = stmt.Where("mc.recipient_type = ?", filter.RecipientType)
	}
	return stmt
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Record, error) {
	var records []*domain.Record
	stmt := db.WithContext(ctx).
		Table("monthly_commissions AS mc").
		Select(`mc.*, COALESCE(lp.company_name, rp.company_name, cp.company_name, xp.company_name, '') AS partner_name`).
		Joins("LEFT JOIN location_partners lp ON mc.location_partner_id = lp.id").
		Joins("LEFT JOIN referral_partners rp ON mc.referral_partner_id = rp.id").
		Joins("LEFT JOIN channel_partners cp ON mc.channel_partner_id = cp.id").
		Joins("LEFT JOIN relationship_partners xp ON mc.relationship_partner_id = xp.id")
	stmt = applyFilter(stmt, filter)
	err := stmt.
		Order("mc.commission_month desc, mc.created_at desc").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repo) Aggregate(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (domain.Summary, error) {
	var summary domain.Summary
	stmt := db.WithContext(ctx).
		Table("monthly_commissions AS mc").
		Select(`COUNT(*) AS total_records,
			COALESCE(SUM(CASE WHEN mc.payment_status = 'pending' THEN 1 ELSE 0 END), 0) AS pending_count,
			COALESCE(SUM(CASE WHEN mc.payment_status = 'paid' THEN 1 ELSE 0 END), 0) AS paid_count,
			COALESCE(SUM(CASE WHEN mc.payment_status = 'pending' THEN mc.amount ELSE 0 END), 0) AS total_pending,
			COALESCE(SUM(CASE WHEN mc.payment_status = 'paid' THEN mc.amount ELSE 0 END), 0) AS total_paid`)
	stmt = applyFilter(stmt, filter)
	if err := stmt.Scan(&summary).Error; err != nil {
		return domain.Summary{}, err
	}
	return summary, nil
}

var displaySeqPattern = regexp.MustCompile(`COMM-\d+-(\d+)`)

func (r *repo) NextDisplaySeq(ctx context.Context, db *gorm.DB, year int) (int, error) {
	// Seed value comes from the latest stored display ID for the year so the
	// counter table picks up where pre-counter data left off.
	var latest string
	err := db.WithContext(ctx).
		Model(&domain.Record{}).
		Select("display_id").
		Where("display_id LIKE ?", "COMM-"+strconv.Itoa(year)+"-%").
		Order("created_at desc").
		Limit(1).
		Scan(&latest).Error
	if err != nil {
		return 0, err
	}

	lastKnown := 0
	if match := displaySeqPattern.FindStringSubmatch(latest); len(match) == 2 {
		if parsed, perr := strconv.Atoi(match[1]); perr == nil {
			lastKnown = parsed
		}
	}

	var seq int
	err = db.WithContext(ctx).Raw(`
		INSERT INTO commission_id_counters (year, last_seq) VALUES (?, ?)
		ON CONFLICT (year) DO UPDATE SET last_seq = CASE
			WHEN commission_id_counters.last_seq >= excluded.last_seq
			THEN commission_id_counters.last_seq + 1
			ELSE excluded.last_seq
		END
		RETURNING last_seq`,
		year, lastKnown+1,
	).Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}
