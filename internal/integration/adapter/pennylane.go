package adapter

import (
	"context"
	"net/http"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	"go.uber.org/zap"
)

type pennylaneInvoice struct {
	ExternalID    string `json:"external_id"`
	InvoiceNumber string `json:"invoice_number"`
	Date          string `json:"date"`
	Deadline      string `json:"deadline"`
	CustomerName  string `json:"customer_name"`
	Currency      string `json:"currency"`
	AmountPreTax  string `json:"currency_amount_before_tax"`
	AmountTax     string `json:"currency_tax"`
	Amount        string `json:"currency_amount"`
	VATRate       string `json:"vat_rate"`
	Label         string `json:"label"`
}

type pennylaneSupplierInvoice struct {
	ExternalID   string `json:"external_id"`
	Date         string `json:"date"`
	SupplierName string `json:"supplier_name"`
	Currency     string `json:"currency"`
	AmountPreTax string `json:"currency_amount_before_tax"`
	AmountTax    string `json:"currency_tax"`
	Amount       string `json:"currency_amount"`
	VATRate      string `json:"vat_rate"`
	Label        string `json:"label"`
	Category     string `json:"category"`
}

// Pennylane pushes customer invoices and supplier expenses.
type Pennylane struct {
	api apiClient
	log *zap.Logger
	now func() time.Time
}

func NewPennylane(baseURL string, client *http.Client, log *zap.Logger, now func() time.Time) *Pennylane {
	return &Pennylane{
		api: newAPIClient(integrationdomain.ProviderPennylane, baseURL, client),
		log: log.Named("adapter.pennylane"),
		now: now,
	}
}

func (p *Pennylane) Provider() integrationdomain.Provider {
	return integrationdomain.ProviderPennylane
}

func (p *Pennylane) Sync(ctx context.Context, req integrationdomain.SyncRequest) (integrationdomain.SyncResult, error) {
	apiKey := req.Credentials.Credential(integrationdomain.CredentialAPIKey)
	if apiKey == "" {
		return integrationdomain.SyncResult{}, integrationdomain.ErrInvalidConfig
	}
	auth := bearer(apiKey)

	var synced integrationdomain.SyncCounts
	rejected := 0
	for _, doc := range req.Invoices {
		err := p.api.do(ctx, http.MethodPost, "/customer_invoices", auth, p.invoicePayload(req, doc), nil)
		switch {
		case err == nil:
			synced.Invoices++
		case isRejection(err):
			rejected++
			p.log.Warn("invoice rejected", zap.String("number", doc.Number), zap.Error(err))
		default:
			return integrationdomain.SyncResult{}, err
		}
	}
	for _, exp := range req.Expenses {
		err := p.api.do(ctx, http.MethodPost, "/supplier_invoices", auth, expensePayload(exp), nil)
		switch {
		case err == nil:
			synced.Expenses++
		case isRejection(err):
			rejected++
			p.log.Warn("expense rejected", zap.String("expense_id", exp.ID), zap.Error(err))
		default:
			return integrationdomain.SyncResult{}, err
		}
	}
	return finish(req, synced, rejected, p.now)
}

func (p *Pennylane) invoicePayload(req integrationdomain.SyncRequest, doc datasetdomain.Document) pennylaneInvoice {
	amounts := doc.Amounts()
	deadline := doc.Date
	if doc.DueDate != nil && !doc.DueDate.IsZero() {
		deadline = *doc.DueDate
	}
	return pennylaneInvoice{
		ExternalID:    doc.ID,
		InvoiceNumber: doc.Number,
		Date:          doc.Date.Format(datasetdomain.DateLayout),
		Deadline:      deadline.Format(datasetdomain.DateLayout),
		CustomerName:  req.ClientName(doc.ClientID),
		Currency:      "EUR",
		AmountPreTax:  amounts.PreTax.StringFixed(2),
		AmountTax:     amounts.VAT.StringFixed(2),
		Amount:        amounts.WithTax.StringFixed(2),
		VATRate:       doc.VATRate.String(),
		Label:         "Facture " + doc.Number,
	}
}

func expensePayload(exp datasetdomain.Expense) pennylaneSupplierInvoice {
	amounts := exp.Amounts()
	return pennylaneSupplierInvoice{
		ExternalID:   exp.ID,
		Date:         exp.Date.Format(datasetdomain.DateLayout),
		SupplierName: exp.Supplier,
		Currency:     "EUR",
		AmountPreTax: amounts.PreTax.StringFixed(2),
		AmountTax:    amounts.VAT.StringFixed(2),
		Amount:       amounts.WithTax.StringFixed(2),
		VATRate:      exp.VATRate.String(),
		Label:        exp.Description,
		Category:     string(exp.Category),
	}
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}
