package domain

import (
	"context"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
)

type Service interface {
	Portfolio(ctx context.Context, ds datasetdomain.Dataset) (Portfolio, error)
	ProjectMargin(ctx context.Context, ds datasetdomain.Dataset, projectID string) (ProjectReport, error)
}

// ProjectReport is a single project record with its alerts.
type ProjectReport struct {
	Record Record  `json:"record"`
	Alerts []Alert `json:"alerts"`
	// NextStatuses lists the statuses the project may move to from its
	// current one.
	NextStatuses []datasetdomain.ProjectStatus `json:"next_statuses"`
}
