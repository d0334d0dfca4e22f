package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/smcatl/skyyield-backend/internal/clock"
	"github.com/smcatl/skyyield-backend/internal/config"
	"github.com/smcatl/skyyield-backend/internal/logger"
	"github.com/smcatl/skyyield-backend/internal/migration"
	"github.com/smcatl/skyyield-backend/internal/server"
	"github.com/smcatl/skyyield-backend/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
