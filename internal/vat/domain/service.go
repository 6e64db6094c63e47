package domain

import (
	"context"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
)

type Service interface {
	Summary(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period) (Summary, error)
	Declaration(ctx context.Context, summary Summary) Declaration
	// NextDeadline returns false under the franchise regime, which files
	// no return.
	NextDeadline(ctx context.Context) (Deadline, bool)
}
