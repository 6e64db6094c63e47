// Package domain names the downloadable artifacts produced for a period.
package domain

import (
	"context"
	"errors"
	"strings"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
)

var ErrUnknownArtifact = errors.New("unknown_artifact")

type Kind string

const (
	KindFEC         Kind = "fec"
	KindInvoicesCSV Kind = "invoices.csv"
	KindExpensesCSV Kind = "expenses.csv"
	KindCA3CSV      Kind = "ca3.csv"
	KindWorkbook    Kind = "workbook.xlsx"
	KindVATPDF      Kind = "vat.pdf"
)

// Kinds lists every artifact in bundle order.
var Kinds = []Kind{KindFEC, KindInvoicesCSV, KindExpensesCSV, KindCA3CSV, KindWorkbook, KindVATPDF}

func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", ErrUnknownArtifact
}

// Artifact is a rendered file ready to be written or served.
type Artifact struct {
	Kind        Kind
	FileName    string
	ContentType string
	Data        []byte
}

type Options struct {
	// Encoding applies to the CSV artifacts; empty means the configured
	// default.
	Encoding string
}

type Service interface {
	Render(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period, kind Kind, opts Options) (Artifact, error)
	// Bundle renders every artifact. It stops at the first failure.
	Bundle(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period, opts Options) ([]Artifact, error)
}
