package migration

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smcatl/skyyield-backend/internal/config"
)

// Module runs migrations at startup. Skipped for the sqlite dialect,
// which only backs tests that create their own schema.
var Module = fx.Module("migration",
	fx.Invoke(func(cfg config.Config, conn *gorm.DB, log *zap.Logger) error {
		if cfg.DBType != "postgres" {
			log.Info("migration: skipped for non-postgres dialect")
			return nil
		}
		return Run(conn, log)
	}),
)
