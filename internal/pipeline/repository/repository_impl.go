package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smcatl/skyyield-backend/internal/pipeline/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return db.WithContext(ctx).Create(app).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Application, error) {
	var app domain.Application
	err := db.WithContext(ctx).Where("id = ?", id).Take(&app).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, stage string) ([]*domain.Application, error) {
	stmt := db.WithContext(ctx).Model(&domain.Application{})
	if stage != "" {
		stmt = stmt.Where("stage = ?", stage)
	}
	var apps []*domain.Application
	if err := stmt.Order("created_at desc, id desc").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, app *domain.Application) error {
	return db.WithContext(ctx).Save(app).Error
}
