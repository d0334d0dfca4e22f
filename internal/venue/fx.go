package venue

import (
	"github.com/smcatl/skyyield-backend/internal/venue/repository"
	"github.com/smcatl/skyyield-backend/internal/venue/service"
	"go.uber.org/fx"
)

var Module = fx.Module("venue.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
