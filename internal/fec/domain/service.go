package domain

import (
	"context"
	"io"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
)

type Service interface {
	Generate(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period) (Ledger, error)
	Write(ctx context.Context, w io.Writer, ledger Ledger) error
}
