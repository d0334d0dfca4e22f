package audit

import (
	"github.com/smcatl/skyyield-backend/internal/audit/repository"
	"github.com/smcatl/skyyield-backend/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
