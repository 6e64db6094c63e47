package domain

import "strings"

// DocumentType discriminates quotes from invoices.
type DocumentType string

const (
	DocumentTypeQuote   DocumentType = "quote"
	DocumentTypeInvoice DocumentType = "invoice"
)

// DocumentStatus represents the quote/invoice lifecycle.
type DocumentStatus string

const (
	DocumentStatusDraft           DocumentStatus = "draft"
	DocumentStatusSent            DocumentStatus = "sent"
	DocumentStatusViewed          DocumentStatus = "viewed"
	DocumentStatusAccepted        DocumentStatus = "accepted"
	DocumentStatusDepositInvoiced DocumentStatus = "deposit_invoiced"
	DocumentStatusInvoiced        DocumentStatus = "invoiced"
	DocumentStatusPaid            DocumentStatus = "paid"
	DocumentStatusRefused         DocumentStatus = "refused"
)

// StatusSet is a named, immutable membership set over document statuses.
type StatusSet struct {
	name    string
	members map[DocumentStatus]struct{}
}

func newStatusSet(name string, statuses ...DocumentStatus) StatusSet {
	members := make(map[DocumentStatus]struct{}, len(statuses))
	for _, s := range statuses {
		members[s] = struct{}{}
	}
	return StatusSet{name: name, members: members}
}

// Name returns the set label.
func (s StatusSet) Name() string { return s.name }

// Contains reports whether status belongs to the set.
func (s StatusSet) Contains(status DocumentStatus) bool {
	_, ok := s.members[status]
	return ok
}

// These sets are the only place status groupings are defined. Margin, VAT,
// ledger and CSV code must go through them.
var (
	// RevenueRecognized statuses count towards projected revenue.
	RevenueRecognized = newStatusSet("revenue_recognized",
		DocumentStatusAccepted,
		DocumentStatusDepositInvoiced,
		DocumentStatusInvoiced,
		DocumentStatusPaid,
	)

	// PendingCollection statuses are issued but not cashed yet.
	PendingCollection = newStatusSet("pending_collection",
		DocumentStatusSent,
		DocumentStatusViewed,
		DocumentStatusAccepted,
		DocumentStatusDepositInvoiced,
		DocumentStatusInvoiced,
	)

	// Collected statuses are cash-basis revenue.
	Collected = newStatusSet("collected", DocumentStatusPaid)
)

var documentStatuses = []DocumentStatus{
	DocumentStatusDraft,
	DocumentStatusSent,
	DocumentStatusViewed,
	DocumentStatusAccepted,
	DocumentStatusDepositInvoiced,
	DocumentStatusInvoiced,
	DocumentStatusPaid,
	DocumentStatusRefused,
}

// ParseDocumentStatus normalizes a raw status. Unknown values map to draft,
// which belongs to no revenue set.
func ParseDocumentStatus(raw string) (DocumentStatus, bool) {
	value := DocumentStatus(strings.ToLower(strings.TrimSpace(raw)))
	for _, s := range documentStatuses {
		if s == value {
			return s, true
		}
	}
	return DocumentStatusDraft, false
}

// ParseDocumentType normalizes a raw document type. Unknown values are quotes
// so they never reach the ledger.
func ParseDocumentType(raw string) (DocumentType, bool) {
	switch DocumentType(strings.ToLower(strings.TrimSpace(raw))) {
	case DocumentTypeInvoice:
		return DocumentTypeInvoice, true
	case DocumentTypeQuote:
		return DocumentTypeQuote, true
	default:
		return DocumentTypeQuote, false
	}
}

// AdjustmentKind says which side of the margin a manual correction affects.
type AdjustmentKind string

const (
	AdjustmentKindRevenue AdjustmentKind = "revenue"
	AdjustmentKindExpense AdjustmentKind = "expense"
)

// ParseAdjustmentKind normalizes a raw adjustment kind.
func ParseAdjustmentKind(raw string) (AdjustmentKind, bool) {
	switch AdjustmentKind(strings.ToLower(strings.TrimSpace(raw))) {
	case AdjustmentKindRevenue:
		return AdjustmentKindRevenue, true
	case AdjustmentKindExpense:
		return AdjustmentKindExpense, true
	default:
		return "", false
	}
}

// ExpenseCategory drives the purchase account used in the ledger.
type ExpenseCategory string

const (
	ExpenseCategoryMaterials ExpenseCategory = "materials"
	ExpenseCategoryOther     ExpenseCategory = "other"
)

// ParseExpenseCategory normalizes a raw category; anything but materials is other.
func ParseExpenseCategory(raw string) ExpenseCategory {
	if ExpenseCategory(strings.ToLower(strings.TrimSpace(raw))) == ExpenseCategoryMaterials {
		return ExpenseCategoryMaterials
	}
	return ExpenseCategoryOther
}

// ProjectStatus represents the worksite lifecycle.
type ProjectStatus string

const (
	ProjectStatusProspect   ProjectStatus = "prospect"
	ProjectStatusInProgress ProjectStatus = "in_progress"
	ProjectStatusFinished   ProjectStatus = "finished"
	ProjectStatusAbandoned  ProjectStatus = "abandoned"
	ProjectStatusArchived   ProjectStatus = "archived"
)

var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusProspect:   {ProjectStatusInProgress, ProjectStatusAbandoned},
	ProjectStatusInProgress: {ProjectStatusFinished, ProjectStatusAbandoned, ProjectStatusProspect},
	ProjectStatusFinished:   {ProjectStatusInProgress},
	ProjectStatusAbandoned:  {ProjectStatusProspect, ProjectStatusInProgress},
	ProjectStatusArchived:   {ProjectStatusFinished, ProjectStatusProspect},
}

// ParseProjectStatus normalizes a raw project status.
func ParseProjectStatus(raw string) (ProjectStatus, bool) {
	value := ProjectStatus(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := projectTransitions[value]; ok {
		return value, true
	}
	return ProjectStatusProspect, false
}

// Transitions lists the statuses reachable from the given one.
func Transitions(from ProjectStatus) []ProjectStatus {
	next := projectTransitions[from]
	out := make([]ProjectStatus, len(next))
	copy(out, next)
	return out
}
