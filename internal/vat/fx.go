package vat

import (
	"github.com/chantierpro/finance/internal/vat/service"
	"go.uber.org/fx"
)

var Module = fx.Module("vat.service",
	fx.Provide(service.NewService),
)
