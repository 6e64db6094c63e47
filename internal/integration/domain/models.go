package domain

import (
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
)

type SyncStatus string

const (
	SyncStatusNotConnected SyncStatus = "not_connected"
	SyncStatusConnected    SyncStatus = "connected"
	SyncStatusSyncing      SyncStatus = "syncing"
	SyncStatusError        SyncStatus = "error"
	SyncStatusUpToDate     SyncStatus = "up_to_date"
)

// Connection is the persisted state of one provider. Config holds the
// provider credentials in clear; stores seal it before writing.
type Connection struct {
	Provider    Provider
	Status      SyncStatus
	Config      map[string]any
	ConnectedAt time.Time
	UpdatedAt   time.Time
	LastSyncAt  *time.Time
	LastError   string
	LastResult  *SyncResult
}

// Credential returns the string value stored under key, or "".
func (c Connection) Credential(key string) string {
	if c.Config == nil {
		return ""
	}
	if v, ok := c.Config[key].(string); ok {
		return v
	}
	return ""
}

// ConnectionSummary is the masked view returned to callers.
type ConnectionSummary struct {
	Provider    Provider       `json:"provider"`
	DisplayName string         `json:"display_name"`
	Status      SyncStatus     `json:"status"`
	Config      map[string]any `json:"config,omitempty"`
	ConnectedAt *time.Time     `json:"connected_at,omitempty"`
	LastSyncAt  *time.Time     `json:"last_sync_at,omitempty"`
	LastError   string         `json:"last_error,omitempty"`
	LastResult  *SyncResult    `json:"last_result,omitempty"`
}

type ConnectRequest struct {
	Provider string         `json:"provider" validate:"required"`
	Config   map[string]any `json:"config" validate:"required,min=1"`
}

// SyncRequest carries the records pushed by one sync run. Invoices and
// Expenses are already restricted to Period.
type SyncRequest struct {
	RunID       string
	Provider    Provider
	Period      datasetdomain.Period
	Company     datasetdomain.Company
	Clients     []datasetdomain.Client
	Invoices    []datasetdomain.Document
	Expenses    []datasetdomain.Expense
	Credentials Connection
}

type SyncCounts struct {
	Invoices     int `json:"invoices"`
	Expenses     int `json:"expenses"`
	Transactions int `json:"transactions"`
}

// ClientName resolves the name of a document client, or "".
func (r SyncRequest) ClientName(id string) string {
	for _, c := range r.Clients {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (c SyncCounts) Total() int {
	return c.Invoices + c.Expenses + c.Transactions
}

type SyncResult struct {
	RunID     string     `json:"run_id"`
	Provider  Provider   `json:"provider"`
	Success   bool       `json:"success"`
	Synced    SyncCounts `json:"synced"`
	Rejected  int        `json:"rejected"`
	Message   string     `json:"message,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}
