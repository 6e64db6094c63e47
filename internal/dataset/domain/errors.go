package domain

import "errors"

var (
	ErrDatasetNotFound   = errors.New("dataset_not_found")
	ErrInvalidDataset    = errors.New("invalid_dataset")
	ErrInvalidPeriod     = errors.New("invalid_period")
	ErrProjectNotFound   = errors.New("project_not_found")
	ErrUnknownRateSource = errors.New("unknown_rate_source")
)
