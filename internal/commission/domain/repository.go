package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *Record) error
	FindByDisplayID(ctx context.Context, db *gorm.DB, displayID string) (*Record, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, displayID string, update StatusUpdate) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Record, error)
	Aggregate(ctx context.Context, db *gorm.DB, filter ListFilter) (Summary, error)

	// NextDisplaySeq returns the next sequence number for the year. The counter
	// row is updated atomically; when no counter exists yet it is seeded from
	// the highest display ID already stored for that year.
	NextDisplaySeq(ctx context.Context, db *gorm.DB, year int) (int, error)
}
