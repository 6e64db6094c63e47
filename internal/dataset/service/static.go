package service

import (
	"context"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
)

// StaticSource serves a dataset held in memory.
type StaticSource struct {
	Dataset datasetdomain.Dataset
}

func NewStaticSource(ds datasetdomain.Dataset) *StaticSource {
	return &StaticSource{Dataset: ds}
}

func (s *StaticSource) Load(ctx context.Context) (datasetdomain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return datasetdomain.Dataset{}, err
	}
	return s.Dataset, nil
}
