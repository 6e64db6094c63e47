package domain

import "context"

// Source hands the engine a fresh copy of the source collections. Computed
// results are never stored, so every pass starts from Load.
type Source interface {
	Load(ctx context.Context) (Dataset, error)
}

// Warning describes a data-quality problem the loader repaired.
type Warning struct {
	Collection string `json:"collection"`
	RecordID   string `json:"record_id,omitempty"`
	Field      string `json:"field"`
	Message    string `json:"message"`
}
