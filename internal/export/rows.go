package export

import (
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/shopspring/decimal"
)

var InvoiceHeader = []string{
	"Numero",
	"Date",
	"Date Echeance",
	"Type",
	"Statut",
	"Client",
	"Email Client",
	"Total HT",
	"Taux TVA",
	"Montant TVA",
	"Total TTC",
}

var ExpenseHeader = []string{
	"Date",
	"Description",
	"Fournisseur",
	"Chantier",
	"Categorie",
	"Montant HT",
	"Taux TVA",
	"Montant TVA",
	"Montant TTC",
	"Mode Reglement",
}

// InvoiceRow is one exported quote or invoice.
type InvoiceRow struct {
	Number      string
	Date        string
	DueDate     string
	Type        string
	Status      string
	ClientName  string
	ClientEmail string
	Amounts     datasetdomain.Amounts
	VATRate     decimal.Decimal
}

func (r InvoiceRow) Strings() []string {
	return []string{
		r.Number,
		r.Date,
		r.DueDate,
		r.Type,
		r.Status,
		r.ClientName,
		r.ClientEmail,
		Money(r.Amounts.PreTax),
		r.VATRate.String(),
		Money(r.Amounts.VAT),
		Money(r.Amounts.WithTax),
	}
}

type ExpenseRow struct {
	Date          string
	Description   string
	Supplier      string
	Project       string
	Category      string
	Amounts       datasetdomain.Amounts
	VATRate       decimal.Decimal
	PaymentMethod string
}

func (r ExpenseRow) Strings() []string {
	return []string{
		r.Date,
		r.Description,
		r.Supplier,
		r.Project,
		r.Category,
		Money(r.Amounts.PreTax),
		r.VATRate.String(),
		Money(r.Amounts.VAT),
		Money(r.Amounts.WithTax),
		r.PaymentMethod,
	}
}

// Money is the machine-readable amount format: dot separator, two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func typeLabel(t datasetdomain.DocumentType) string {
	if t == datasetdomain.DocumentTypeInvoice {
		return "Facture"
	}
	return "Devis"
}

// InvoiceRows resolves clients through idx. The due date defaults to the
// document date.
func InvoiceRows(idx *datasetdomain.Index, docs []datasetdomain.Document) []InvoiceRow {
	rows := make([]InvoiceRow, 0, len(docs))
	for _, doc := range docs {
		client, _ := idx.Client(doc.ClientID)
		date := formatDate(doc.Date)
		due := date
		if doc.DueDate != nil && !doc.DueDate.IsZero() {
			due = formatDate(*doc.DueDate)
		}
		rows = append(rows, InvoiceRow{
			Number:      doc.Number,
			Date:        date,
			DueDate:     due,
			Type:        typeLabel(doc.Type),
			Status:      string(doc.Status),
			ClientName:  client.Name,
			ClientEmail: client.Email,
			Amounts:     doc.Amounts(),
			VATRate:     doc.VATRate,
		})
	}
	return rows
}

func ExpenseRows(idx *datasetdomain.Index, expenses []datasetdomain.Expense) []ExpenseRow {
	rows := make([]ExpenseRow, 0, len(expenses))
	for _, exp := range expenses {
		project, _ := idx.Project(exp.ProjectID)
		rows = append(rows, ExpenseRow{
			Date:          formatDate(exp.Date),
			Description:   exp.Description,
			Supplier:      exp.Supplier,
			Project:       project.Name,
			Category:      string(exp.Category),
			Amounts:       exp.Amounts(),
			VATRate:       exp.VATRate,
			PaymentMethod: exp.PaymentMethod,
		})
	}
	return rows
}
