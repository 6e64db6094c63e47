package adapter

import (
	"context"
	"net/http"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	"go.uber.org/zap"
)

type indyLine struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
}

type indyInvoice struct {
	Reference  string     `json:"reference"`
	Date       string     `json:"date"`
	ClientName string     `json:"client_name"`
	TotalHT    string     `json:"total_ht"`
	TotalTVA   string     `json:"total_tva"`
	TotalTTC   string     `json:"total_ttc"`
	VATRate    string     `json:"tva_rate"`
	Paid       bool       `json:"paid"`
	Lines      []indyLine `json:"lines,omitempty"`
}

// Indy only receives sales invoices; expenses are ignored.
type Indy struct {
	api apiClient
	log *zap.Logger
	now func() time.Time
}

func NewIndy(baseURL string, client *http.Client, log *zap.Logger, now func() time.Time) *Indy {
	return &Indy{
		api: newAPIClient(integrationdomain.ProviderIndy, baseURL, client),
		log: log.Named("adapter.indy"),
		now: now,
	}
}

func (a *Indy) Provider() integrationdomain.Provider {
	return integrationdomain.ProviderIndy
}

func (a *Indy) Sync(ctx context.Context, req integrationdomain.SyncRequest) (integrationdomain.SyncResult, error) {
	apiKey := req.Credentials.Credential(integrationdomain.CredentialAPIKey)
	if apiKey == "" {
		return integrationdomain.SyncResult{}, integrationdomain.ErrInvalidConfig
	}

	var synced integrationdomain.SyncCounts
	rejected := 0
	for _, doc := range req.Invoices {
		err := a.api.do(ctx, http.MethodPost, "/invoices", bearer(apiKey), indyPayload(req, doc), nil)
		switch {
		case err == nil:
			synced.Invoices++
		case isRejection(err):
			rejected++
			a.log.Warn("invoice rejected", zap.String("number", doc.Number), zap.Error(err))
		default:
			return integrationdomain.SyncResult{}, err
		}
	}
	return finish(req, synced, rejected, a.now)
}

func indyPayload(req integrationdomain.SyncRequest, doc datasetdomain.Document) indyInvoice {
	amounts := doc.Amounts()
	lines := make([]indyLine, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		lines = append(lines, indyLine{
			Description: l.Description,
			Quantity:    l.Quantity.String(),
			UnitPrice:   l.UnitPrice.StringFixed(2),
		})
	}
	return indyInvoice{
		Reference:  doc.Number,
		Date:       doc.Date.Format(datasetdomain.DateLayout),
		ClientName: req.ClientName(doc.ClientID),
		TotalHT:    amounts.PreTax.StringFixed(2),
		TotalTVA:   amounts.VAT.StringFixed(2),
		TotalTTC:   amounts.WithTax.StringFixed(2),
		VATRate:    doc.VATRate.String(),
		Paid:       doc.Status == datasetdomain.DocumentStatusPaid,
		Lines:      lines,
	}
}
