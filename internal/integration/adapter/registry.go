package adapter

import (
	"net/http"
	"time"

	"github.com/chantierpro/finance/internal/clock"
	"github.com/chantierpro/finance/internal/config"
	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	Clock clock.Clock `optional:"true"`
}

// Registry resolves the adapter of a connectable provider.
type Registry struct {
	adapters map[integrationdomain.Provider]integrationdomain.Adapter
}

func NewRegistry(p Params) *Registry {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	log := p.Log.Named("integration.adapter")

	if p.Cfg.DemoMode {
		log.Info("accounting providers running in demo mode")
		return RegistryOf(
			NewDemo(integrationdomain.ProviderPennylane, c.Now),
			NewDemo(integrationdomain.ProviderIndy, c.Now),
			NewDemo(integrationdomain.ProviderQonto, c.Now),
		)
	}

	timeout := time.Duration(p.Cfg.Providers.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	return RegistryOf(
		NewPennylane(p.Cfg.Providers.PennylaneURL, client, log, c.Now),
		NewIndy(p.Cfg.Providers.IndyURL, client, log, c.Now),
		NewQonto(p.Cfg.Providers.QontoURL, client, log, c.Now),
	)
}

func RegistryOf(adapters ...integrationdomain.Adapter) *Registry {
	r := &Registry{adapters: make(map[integrationdomain.Provider]integrationdomain.Adapter, len(adapters))}
	for _, a := range adapters {
		r.adapters[a.Provider()] = a
	}
	return r
}

func (r *Registry) Get(provider integrationdomain.Provider) (integrationdomain.Adapter, bool) {
	if r == nil {
		return nil, false
	}
	a, ok := r.adapters[provider]
	return a, ok
}
