package margin

import (
	"github.com/chantierpro/finance/internal/margin/service"
	"go.uber.org/fx"
)

var Module = fx.Module("margin.service",
	fx.Provide(service.NewService),
)
