package partner

import (
	"github.com/smcatl/skyyield-backend/internal/partner/repository"
	"github.com/smcatl/skyyield-backend/internal/partner/service"
	"go.uber.org/fx"
)

var Module = fx.Module("partner.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
