package scheduler

import (
	"context"

	"github.com/smcatl/skyyield-backend/internal/config"
	"go.uber.org/fx"
)

func ProvideConfig(cfg config.Config) Config {
	return Config{RunInterval: cfg.SchedulerInterval}.withDefaults()
}

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
	fx.Invoke(startScheduler),
)

func startScheduler(lc fx.Lifecycle, cfg config.Config, sched *Scheduler) {
	if !cfg.SchedulerEnabled {
		return
	}

	var cancel context.CancelFunc

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())
			go sched.RunForever(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			return nil
		},
	})
}
