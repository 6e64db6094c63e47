package dataset

import (
	"github.com/chantierpro/finance/internal/dataset/service"
	"go.uber.org/fx"
)

var Module = fx.Module("dataset.service",
	fx.Provide(service.NewFileSource),
)
