package integration

import (
	"github.com/chantierpro/finance/internal/integration/adapter"
	"github.com/chantierpro/finance/internal/integration/service"
	"github.com/chantierpro/finance/internal/integration/store"
	"go.uber.org/fx"
)

var Module = fx.Module("integration.service",
	fx.Provide(
		store.New,
		adapter.NewRegistry,
		service.NewService,
	),
)
