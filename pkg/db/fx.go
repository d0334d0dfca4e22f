package db

import (
	"time"

	"github.com/smcatl/skyyield-backend/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	dialect, err := Dialect(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := gorm.Open(dialect, &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConn)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConn)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DBConnMaxLifetime) * time.Second)

	log.Info("database connected",
		zap.String("type", cfg.DBType),
		zap.String("host", cfg.DBHost),
		zap.String("name", cfg.DBName),
	)

	return conn, nil
}

var Module = fx.Module("db",
	fx.Provide(Open),
)
