// Package domain models the Fichier des Ecritures Comptables: the
// pipe-delimited double-entry ledger French tax authorities require.
package domain

import (
	"fmt"
	"strings"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/shopspring/decimal"
)

const (
	DateLayout = "20060102"
	Currency   = "EUR"
	Delimiter  = "|"
)

type Journal struct {
	Code  string
	Label string
}

var (
	JournalSales     = Journal{Code: "VE", Label: "Ventes"}
	JournalPurchases = Journal{Code: "AC", Label: "Achats"}
)

type Account struct {
	Number string
	Label  string
}

var (
	AccountClients       = Account{Number: "411000", Label: "Clients"}
	AccountServices      = Account{Number: "706000", Label: "Prestations de services"}
	AccountVATCollected  = Account{Number: "445710", Label: "TVA collectee"}
	AccountSuppliers     = Account{Number: "401000", Label: "Fournisseurs"}
	AccountMaterials     = Account{Number: "601000", Label: "Achats matieres"}
	AccountSupplies      = Account{Number: "602000", Label: "Achats fournitures"}
	AccountVATDeductible = Account{Number: "445660", Label: "TVA deductible"}
)

// PurchaseAccount picks the charge account of an expense.
func PurchaseAccount(category datasetdomain.ExpenseCategory) Account {
	if category == datasetdomain.ExpenseCategoryMaterials {
		return AccountMaterials
	}
	return AccountSupplies
}

// Header lists the 18 mandatory FEC columns in order.
var Header = []string{
	"JournalCode",
	"JournalLib",
	"EcritureNum",
	"EcritureDate",
	"CompteNum",
	"CompteLib",
	"CompAuxNum",
	"CompAuxLib",
	"PieceRef",
	"PieceDate",
	"EcritureLib",
	"Debit",
	"Credit",
	"EcritureLet",
	"DateLet",
	"ValidDate",
	"Montantdevise",
	"Idevise",
}

// Line is one FEC row.
type Line struct {
	Journal              Journal
	EntryNumber          int
	EntryDate            time.Time
	Account              Account
	AuxiliaryID          string
	AuxiliaryLabel       string
	PieceRef             string
	PieceDate            time.Time
	Label                string
	Debit                decimal.Decimal
	Credit               decimal.Decimal
	ReconciliationLetter string
	ReconciliationDate   *time.Time
	ValidationDate       time.Time
	ForeignAmount        *decimal.Decimal
	Currency             string
}

// Fields renders the line in Header order.
func (l Line) Fields() []string {
	reconciled := ""
	if l.ReconciliationDate != nil {
		reconciled = formatDate(*l.ReconciliationDate)
	}
	foreign := ""
	if l.ForeignAmount != nil {
		foreign = l.ForeignAmount.StringFixed(2)
	}
	return []string{
		l.Journal.Code,
		l.Journal.Label,
		EntryNumber(l.EntryNumber),
		formatDate(l.EntryDate),
		l.Account.Number,
		l.Account.Label,
		sanitize(l.AuxiliaryID),
		sanitize(l.AuxiliaryLabel),
		sanitize(l.PieceRef),
		formatDate(l.PieceDate),
		sanitize(l.Label),
		l.Debit.StringFixed(2),
		l.Credit.StringFixed(2),
		sanitize(l.ReconciliationLetter),
		reconciled,
		formatDate(l.ValidationDate),
		foreign,
		l.Currency,
	}
}

// EntryNumber zero-pads n to six digits.
func EntryNumber(n int) string {
	return fmt.Sprintf("%06d", n)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

var fieldReplacer = strings.NewReplacer(Delimiter, " ", "\r", " ", "\n", " ")

// sanitize keeps free text from breaking the row layout.
func sanitize(s string) string {
	return fieldReplacer.Replace(s)
}

// Entry groups the lines of one accounting event under one number.
type Entry struct {
	Number int
	Lines  []Line
}

type Ledger struct {
	Period  datasetdomain.Period
	Company datasetdomain.Company
	Entries []Entry
}

func (l Ledger) Lines() []Line {
	n := 0
	for _, e := range l.Entries {
		n += len(e.Lines)
	}
	out := make([]Line, 0, n)
	for _, e := range l.Entries {
		out = append(out, e.Lines...)
	}
	return out
}

// LineCount returns the number of lines per journal code.
func (l Ledger) LineCount() map[string]int {
	out := make(map[string]int, 2)
	for _, e := range l.Entries {
		for _, line := range e.Lines {
			out[line.Journal.Code]++
		}
	}
	return out
}

// FileName is the regulatory name {SIREN}FEC{YYYYMMDD}.txt where the date
// is the closing date of the period.
func FileName(siren string, closing time.Time) string {
	siren = strings.TrimSpace(siren)
	if siren == "" {
		siren = "000000000"
	}
	return siren + "FEC" + closing.Format(DateLayout) + ".txt"
}

// ValidateBalanced checks that an entry has lines, that no line carries
// both a debit and a credit, and that debits equal credits.
func ValidateBalanced(lines []Line) error {
	if len(lines) == 0 {
		return ErrEmptyEntry
	}
	debit := decimal.Zero
	credit := decimal.Zero
	for _, line := range lines {
		if !line.Debit.IsZero() && !line.Credit.IsZero() {
			return ErrInvalidLineAmount
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debit %s credit %s", ErrUnbalancedEntry, debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}
