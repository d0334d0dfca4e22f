package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smcatl/skyyield-backend/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, kind Kind, partner *Partner) error
	FindByID(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (*Partner, error)
	List(ctx context.Context, db *gorm.DB, kind Kind, filter ListFilter, page pagination.Pagination) ([]*Partner, error)
	UpdateStructure(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID, update StructureUpdate) error
	UpdateStatus(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID, status string, activation *time.Time) error

	// CountActiveReferrals counts location partners referred by the given
	// partner whose activation date falls in [from, to).
	CountActiveReferrals(ctx context.Context, db *gorm.DB, referrerID snowflake.ID, from, to time.Time) (int64, error)

	DisplayName(ctx context.Context, db *gorm.DB, kind Kind, id snowflake.ID) (string, error)
}
