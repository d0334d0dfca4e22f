package adapters

import (
	"github.com/smcatl/skyyield-backend/internal/config"
	"github.com/smcatl/skyyield-backend/internal/payout/adapters/tipalti"
	payoutdomain "github.com/smcatl/skyyield-backend/internal/payout/domain"
	"go.uber.org/zap"
)

// Registry holds the configured payout providers keyed by name.
type Registry struct {
	providers map[string]payoutdomain.Provider
}

func NewRegistry(cfg config.Config, log *zap.Logger) *Registry {
	registry := &Registry{providers: map[string]payoutdomain.Provider{}}

	if cfg.TipaltiWebhookSecret != "" {
		adapter, err := tipalti.New(cfg.TipaltiWebhookSecret)
		if err != nil {
			log.Warn("tipalti adapter not configured", zap.Error(err))
		} else {
			registry.providers[adapter.Name()] = adapter
		}
	}

	return registry
}

func (r *Registry) Get(name string) (payoutdomain.Provider, bool) {
	provider, ok := r.providers[name]
	return provider, ok
}

// Register adds or replaces a provider. Used by tests.
func (r *Registry) Register(provider payoutdomain.Provider) {
	r.providers[provider.Name()] = provider
}
