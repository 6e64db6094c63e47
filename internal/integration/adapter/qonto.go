package adapter

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	"go.uber.org/zap"
)

// qontoMaxPages bounds pagination on a misbehaving API.
const qontoMaxPages = 100

type qontoTransaction struct {
	ID        string `json:"transaction_id"`
	Amount    any    `json:"amount"`
	Side      string `json:"side"`
	Label     string `json:"label"`
	SettledAt string `json:"settled_at"`
}

type qontoPage struct {
	Transactions []qontoTransaction `json:"transactions"`
	Meta         struct {
		NextPage *int `json:"next_page"`
	} `json:"meta"`
}

// Qonto pulls the bank transactions settled in the period so they can be
// reconciled against invoices and expenses.
type Qonto struct {
	api apiClient
	log *zap.Logger
	now func() time.Time
}

func NewQonto(baseURL string, client *http.Client, log *zap.Logger, now func() time.Time) *Qonto {
	return &Qonto{
		api: newAPIClient(integrationdomain.ProviderQonto, baseURL, client),
		log: log.Named("adapter.qonto"),
		now: now,
	}
}

func (a *Qonto) Provider() integrationdomain.Provider {
	return integrationdomain.ProviderQonto
}

func (a *Qonto) Sync(ctx context.Context, req integrationdomain.SyncRequest) (integrationdomain.SyncResult, error) {
	login := req.Credentials.Credential(integrationdomain.CredentialLogin)
	secret := req.Credentials.Credential(integrationdomain.CredentialSecretKey)
	iban := req.Credentials.Credential(integrationdomain.CredentialIBAN)
	if login == "" || secret == "" || iban == "" {
		return integrationdomain.SyncResult{}, integrationdomain.ErrInvalidConfig
	}
	auth := func(r *http.Request) {
		r.Header.Set("Authorization", login+":"+secret)
	}

	var synced integrationdomain.SyncCounts
	page := 1
	for i := 0; i < qontoMaxPages; i++ {
		q := url.Values{}
		q.Set("iban", iban)
		q.Set("status[]", "completed")
		q.Set("settled_at_from", req.Period.Start.Format(time.RFC3339))
		q.Set("settled_at_to", req.Period.End.Add(24*time.Hour-time.Second).Format(time.RFC3339))
		q.Set("page", fmt.Sprint(page))

		var resp qontoPage
		if err := a.api.do(ctx, http.MethodGet, "/transactions?"+q.Encode(), auth, nil, &resp); err != nil {
			if isRejection(err) {
				return integrationdomain.SyncResult{}, fmt.Errorf("qonto: %w: %v", integrationdomain.ErrInvalidConfig, err)
			}
			return integrationdomain.SyncResult{}, err
		}
		synced.Transactions += len(resp.Transactions)
		if resp.Meta.NextPage == nil || *resp.Meta.NextPage <= page {
			break
		}
		page = *resp.Meta.NextPage
	}
	a.log.Debug("transactions fetched", zap.Int("count", synced.Transactions))
	return finish(req, synced, 0, a.now)
}
