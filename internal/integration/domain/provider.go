// Package domain describes the accounting providers the exports can be pushed
// to and the state kept for each connection.
package domain

import "strings"

type Provider string

const (
	ProviderPennylane Provider = "pennylane"
	ProviderIndy      Provider = "indy"
	ProviderQonto     Provider = "qonto"
	ProviderExportCSV Provider = "export_csv"
	ProviderExportFEC Provider = "export_fec"
)

type Feature string

const (
	FeatureSyncInvoices     Feature = "sync_factures"
	FeatureSyncExpenses     Feature = "sync_depenses"
	FeatureSyncTransactions Feature = "sync_transactions"
	FeatureReconciliation   Feature = "rapprochement"
	FeatureTransfers        Feature = "virements"
	FeatureDeclarations     Feature = "declarations"
	FeatureExportInvoices   Feature = "export_factures"
	FeatureExportExpenses   Feature = "export_depenses"
	FeatureExportVAT        Feature = "export_tva"
	FeatureExportFEC        Feature = "export_fec"
	FeatureTaxCompliance    Feature = "conformite_fiscale"
)

// Credential keys accepted in a connection config.
const (
	CredentialAPIKey    = "api_key"
	CredentialLogin     = "login"
	CredentialSecretKey = "secret_key"
	CredentialIBAN      = "iban"
)

// CatalogEntry is a provider as shown in the integrations screen.
type CatalogEntry struct {
	Provider    Provider  `json:"provider"`
	DisplayName string    `json:"display_name"`
	Description string    `json:"description"`
	Features    []Feature `json:"features"`
	// Credentials are the config keys a connection must provide.
	Credentials []string `json:"credentials,omitempty"`
	// ExportOnly providers produce files locally and cannot be connected.
	ExportOnly bool `json:"export_only"`
}

var catalog = []CatalogEntry{
	{
		Provider:    ProviderPennylane,
		DisplayName: "Pennylane",
		Description: "Comptabilite automatisee pour TPE/PME",
		Features:    []Feature{FeatureSyncInvoices, FeatureSyncExpenses, FeatureReconciliation},
		Credentials: []string{CredentialAPIKey},
	},
	{
		Provider:    ProviderIndy,
		DisplayName: "Indy",
		Description: "Comptabilite simplifiee pour independants",
		Features:    []Feature{FeatureSyncInvoices, FeatureDeclarations},
		Credentials: []string{CredentialAPIKey},
	},
	{
		Provider:    ProviderQonto,
		DisplayName: "Qonto",
		Description: "Compte pro et gestion financiere",
		Features:    []Feature{FeatureSyncTransactions, FeatureTransfers, FeatureReconciliation},
		Credentials: []string{CredentialLogin, CredentialSecretKey, CredentialIBAN},
	},
	{
		Provider:    ProviderExportCSV,
		DisplayName: "Export CSV",
		Description: "Export compatible Excel et logiciels comptables",
		Features:    []Feature{FeatureExportInvoices, FeatureExportExpenses, FeatureExportVAT},
		ExportOnly:  true,
	},
	{
		Provider:    ProviderExportFEC,
		DisplayName: "Export FEC",
		Description: "Fichier des Ecritures Comptables (legal)",
		Features:    []Feature{FeatureExportFEC, FeatureTaxCompliance},
		ExportOnly:  true,
	},
}

// Catalog returns a copy of the provider catalog in display order.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// LookupProvider normalizes raw and returns its catalog entry.
func LookupProvider(raw string) (CatalogEntry, error) {
	name := Provider(strings.ToLower(strings.TrimSpace(raw)))
	for _, entry := range catalog {
		if entry.Provider == name {
			return entry, nil
		}
	}
	return CatalogEntry{}, ErrProviderNotFound
}
