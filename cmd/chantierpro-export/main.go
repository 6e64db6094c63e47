package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/chantierpro/finance/internal/clock"
	"github.com/chantierpro/finance/internal/config"
	"github.com/chantierpro/finance/internal/dataset"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/chantierpro/finance/internal/fec"
	"github.com/chantierpro/finance/internal/observability"
	obsmetrics "github.com/chantierpro/finance/internal/observability/metrics"
	"github.com/chantierpro/finance/internal/providers/pdf"
	"github.com/chantierpro/finance/internal/reporting"
	reportingdomain "github.com/chantierpro/finance/internal/reporting/domain"
	"github.com/chantierpro/finance/internal/vat"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type options struct {
	dataset  string
	start    string
	end      string
	out      string
	encoding string
}

func main() {
	var opts options
	flag.StringVar(&opts.dataset, "dataset", "", "Dataset JSON file (defaults to DATASET_PATH)")
	flag.StringVar(&opts.start, "start", "", "Required: first day of the period (YYYY-MM-DD)")
	flag.StringVar(&opts.end, "end", "", "Required: last day of the period (YYYY-MM-DD)")
	flag.StringVar(&opts.out, "out", "", "Output directory (defaults to EXPORT_OUTPUT_DIR)")
	flag.StringVar(&opts.encoding, "encoding", "", "CSV encoding: utf-8, utf-8-bom or windows-1252 (defaults to EXPORT_ENCODING)")
	flag.Parse()

	if strings.TrimSpace(opts.start) == "" || strings.TrimSpace(opts.end) == "" {
		fmt.Fprintln(os.Stderr, "--start and --end are required")
		os.Exit(2)
	}
	period, err := datasetdomain.ParsePeriod(opts.start, opts.end)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid period: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts, period)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, period datasetdomain.Period) (err error) {
	var (
		log     *zap.Logger
		cfg     config.Config
		source  datasetdomain.Source
		reports reportingdomain.Service
		pusher  obsmetrics.Pusher
	)

	app := fx.New(
		fx.NopLogger,
		config.Module,
		fx.Decorate(func(cfg config.Config) config.Config {
			return applyFlags(cfg, opts)
		}),
		observability.Module,
		clock.Module,
		dataset.Module,
		vat.Module,
		fec.Module,
		pdf.Module,
		reporting.Module,
		fx.Provide(obsmetrics.NewPusher),
		fx.Populate(&log, &cfg, &source, &reports, &pusher),
	)
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, app.Stop(context.WithoutCancel(ctx)))
	}()

	ds, err := source.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset %s: %w", cfg.DatasetPath, err)
	}

	artifacts, err := reports.Bundle(ctx, ds, period, reportingdomain.Options{Encoding: cfg.ExportEncoding})
	if err != nil {
		return err
	}

	paths, err := writeArtifacts(cfg.OutputDir, artifacts)
	if err != nil {
		return err
	}
	for i, path := range paths {
		log.Info("artifact written",
			zap.String("kind", string(artifacts[i].Kind)),
			zap.String("path", path),
			zap.Int("bytes", len(artifacts[i].Data)),
		)
	}

	if pusher != nil {
		if err := pusher.Push(ctx, prometheus.DefaultGatherer); err != nil {
			log.Warn("metrics push failed", zap.Error(err))
		}
	}
	return nil
}

func applyFlags(cfg config.Config, opts options) config.Config {
	cfg.Observability.LogOutput = "stderr"
	if v := strings.TrimSpace(opts.dataset); v != "" {
		cfg.DatasetPath = v
	}
	if v := strings.TrimSpace(opts.out); v != "" {
		cfg.OutputDir = v
	}
	if v := strings.TrimSpace(opts.encoding); v != "" {
		cfg.ExportEncoding = strings.ToLower(v)
	}
	return cfg
}

// writeArtifacts stores every artifact under dir and returns the written
// paths in artifact order. A failed write never leaves a truncated file under
// the final name.
func writeArtifacts(dir string, artifacts []reportingdomain.Artifact) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	paths := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		path := filepath.Join(dir, filepath.Base(a.FileName))
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, a.Data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", a.FileName, err)
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return paths, fmt.Errorf("write %s: %w", a.FileName, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
