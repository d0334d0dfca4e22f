package payout

import (
	"github.com/smcatl/skyyield-backend/internal/payout/adapters"
	"github.com/smcatl/skyyield-backend/internal/payout/service"
	"go.uber.org/fx"
)

var Module = fx.Module("payout.service",
	fx.Provide(adapters.NewRegistry),
	fx.Provide(service.New),
)
