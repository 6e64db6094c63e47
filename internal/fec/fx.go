package fec

import (
	"github.com/chantierpro/finance/internal/fec/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fec.service",
	fx.Provide(service.NewService),
)
