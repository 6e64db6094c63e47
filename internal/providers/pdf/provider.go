// Package pdf renders printable reports with maroto.
package pdf

import (
	"context"
	"io"

	"go.uber.org/fx"
)

type Provider interface {
	GenerateVATReport(ctx context.Context, report VATReport) (io.Reader, error)
}

var Module = fx.Module("pdf.provider",
	fx.Provide(New),
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}
