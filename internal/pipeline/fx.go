package pipeline

import (
	"github.com/smcatl/skyyield-backend/internal/pipeline/repository"
	"github.com/smcatl/skyyield-backend/internal/pipeline/service"
	"go.uber.org/fx"
)

var Module = fx.Module("pipeline.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
