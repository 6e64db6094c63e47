package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chantierpro/finance/internal/clock"
	"github.com/chantierpro/finance/internal/config"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/chantierpro/finance/internal/export"
	fecdomain "github.com/chantierpro/finance/internal/fec/domain"
	obsmetrics "github.com/chantierpro/finance/internal/observability/metrics"
	"github.com/chantierpro/finance/internal/providers/pdf"
	reportingdomain "github.com/chantierpro/finance/internal/reporting/domain"
	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	FEC        fecdomain.Service
	VAT        vatdomain.Service
	PDF        pdf.Provider
	Clock      clock.Clock               `optional:"true"`
	ObsMetrics *obsmetrics.Metrics       `optional:"true"`
	Reports    *obsmetrics.ReportMetrics `optional:"true"`
}

type Service struct {
	log             *zap.Logger
	fec             fecdomain.Service
	vat             vatdomain.Service
	pdf             pdf.Provider
	clock           clock.Clock
	defaultEncoding string
	obsMetrics      *obsmetrics.Metrics
	reports         *obsmetrics.ReportMetrics
	tracer          trace.Tracer
}

func NewService(p Params) reportingdomain.Service {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Service{
		log:             p.Log.Named("reporting.service"),
		fec:             p.FEC,
		vat:             p.VAT,
		pdf:             p.PDF,
		clock:           c,
		defaultEncoding: p.Cfg.ExportEncoding,
		obsMetrics:      p.ObsMetrics,
		reports:         p.Reports,
		tracer:          otel.Tracer("chantierpro/reporting"),
	}
}

func (s *Service) Bundle(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period, opts reportingdomain.Options) ([]reportingdomain.Artifact, error) {
	out := make([]reportingdomain.Artifact, 0, len(reportingdomain.Kinds))
	for _, kind := range reportingdomain.Kinds {
		artifact, err := s.Render(ctx, ds, period, kind, opts)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", kind, err)
		}
		out = append(out, artifact)
	}
	return out, nil
}

func (s *Service) Render(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period, kind reportingdomain.Kind, opts reportingdomain.Options) (reportingdomain.Artifact, error) {
	ctx, span := s.tracer.Start(ctx, "reporting.render", trace.WithAttributes(
		attribute.String("artifact", string(kind)),
		attribute.String("period", period.String()),
	))
	defer span.End()

	artifact, err := s.render(ctx, ds, period, kind, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		return reportingdomain.Artifact{}, err
	}
	s.reports.AddExportBytes(string(kind), len(artifact.Data))
	if kind != reportingdomain.KindFEC {
		s.obsMetrics.RecordExport(ctx, string(kind))
	}
	s.log.Debug("artifact rendered",
		zap.String("kind", string(kind)),
		zap.String("file", artifact.FileName),
		zap.Int("bytes", len(artifact.Data)),
	)
	return artifact, nil
}

func (s *Service) render(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period, kind reportingdomain.Kind, opts reportingdomain.Options) (reportingdomain.Artifact, error) {
	switch kind {
	case reportingdomain.KindFEC:
		return s.renderFEC(ctx, ds, period)
	case reportingdomain.KindInvoicesCSV:
		rows := export.InvoiceRows(datasetdomain.NewIndex(ds), ds.DocumentsIn(period))
		return s.renderCSV(kind, fileName(ds.Company, "factures", period, "csv"), opts, func(w io.Writer) error {
			return export.WriteInvoices(w, rows)
		})
	case reportingdomain.KindExpensesCSV:
		rows := export.ExpenseRows(datasetdomain.NewIndex(ds), ds.ExpensesIn(period))
		return s.renderCSV(kind, fileName(ds.Company, "depenses", period, "csv"), opts, func(w io.Writer) error {
			return export.WriteExpenses(w, rows)
		})
	case reportingdomain.KindCA3CSV:
		summary, err := s.vat.Summary(ctx, ds, period)
		if err != nil {
			return reportingdomain.Artifact{}, err
		}
		decl := s.vat.Declaration(ctx, summary)
		return s.renderCSV(kind, fileName(ds.Company, "ca3", period, "csv"), opts, func(w io.Writer) error {
			return export.WriteDeclaration(w, decl)
		})
	case reportingdomain.KindWorkbook:
		return s.renderWorkbook(ctx, ds, period)
	case reportingdomain.KindVATPDF:
		return s.renderPDF(ctx, ds, period)
	default:
		return reportingdomain.Artifact{}, reportingdomain.ErrUnknownArtifact
	}
}

func (s *Service) renderFEC(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period) (reportingdomain.Artifact, error) {
	ledger, err := s.fec.Generate(ctx, ds, period)
	if err != nil {
		return reportingdomain.Artifact{}, err
	}
	var buf bytes.Buffer
	if err := s.fec.Write(ctx, &buf, ledger); err != nil {
		return reportingdomain.Artifact{}, err
	}
	return reportingdomain.Artifact{
		Kind:        reportingdomain.KindFEC,
		FileName:    fecdomain.FileName(ds.Company.SIREN, period.End),
		ContentType: contentTypeText,
		Data:        buf.Bytes(),
	}, nil
}

func (s *Service) renderCSV(kind reportingdomain.Kind, name string, opts reportingdomain.Options, write func(io.Writer) error) (reportingdomain.Artifact, error) {
	raw := opts.Encoding
	if raw == "" {
		raw = s.defaultEncoding
	}
	enc, err := export.ParseEncoding(raw)
	if err != nil {
		return reportingdomain.Artifact{}, err
	}

	start := time.Now()
	var buf bytes.Buffer
	w, err := export.NewWriter(&buf, enc)
	if err != nil {
		return reportingdomain.Artifact{}, err
	}
	if err := write(w); err != nil {
		return reportingdomain.Artifact{}, err
	}
	if err := w.Close(); err != nil {
		return reportingdomain.Artifact{}, err
	}
	s.reports.ObserveOperation(obsmetrics.OperationCSV, time.Since(start))

	return reportingdomain.Artifact{
		Kind:        kind,
		FileName:    name,
		ContentType: csvContentType(enc),
		Data:        buf.Bytes(),
	}, nil
}

func (s *Service) renderWorkbook(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period) (reportingdomain.Artifact, error) {
	summary, err := s.vat.Summary(ctx, ds, period)
	if err != nil {
		return reportingdomain.Artifact{}, err
	}
	idx := datasetdomain.NewIndex(ds)

	start := time.Now()
	var buf bytes.Buffer
	err = export.WriteWorkbook(&buf, export.Workbook{
		Invoices:    export.InvoiceRows(idx, ds.DocumentsIn(period)),
		Expenses:    export.ExpenseRows(idx, ds.ExpensesIn(period)),
		Summary:     summary,
		Declaration: s.vat.Declaration(ctx, summary),
	})
	if err != nil {
		return reportingdomain.Artifact{}, err
	}
	s.reports.ObserveOperation(obsmetrics.OperationXLSX, time.Since(start))

	return reportingdomain.Artifact{
		Kind:        reportingdomain.KindWorkbook,
		FileName:    fileName(ds.Company, "comptabilite", period, "xlsx"),
		ContentType: contentTypeXLSX,
		Data:        buf.Bytes(),
	}, nil
}

func (s *Service) renderPDF(ctx context.Context, ds datasetdomain.Dataset, period datasetdomain.Period) (reportingdomain.Artifact, error) {
	summary, err := s.vat.Summary(ctx, ds, period)
	if err != nil {
		return reportingdomain.Artifact{}, err
	}
	report := VATReport(ds.Company, summary, s.vat.Declaration(ctx, summary), s.clock.Now())
	if deadline, ok := s.vat.NextDeadline(ctx); ok {
		report.Deadline = deadline.Date.Format(datasetdomain.DateLayout) + " (" + deadline.Period + ")"
	}

	start := time.Now()
	r, err := s.pdf.GenerateVATReport(ctx, report)
	if err != nil {
		return reportingdomain.Artifact{}, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return reportingdomain.Artifact{}, err
	}
	s.reports.ObserveOperation(obsmetrics.OperationPDF, time.Since(start))

	return reportingdomain.Artifact{
		Kind:        reportingdomain.KindVATPDF,
		FileName:    fileName(ds.Company, "tva", period, "pdf"),
		ContentType: contentTypePDF,
		Data:        data,
	}, nil
}

func csvContentType(enc export.Encoding) string {
	if enc == export.EncodingWindows1252 {
		return "text/csv; charset=windows-1252"
	}
	return "text/csv; charset=utf-8"
}
