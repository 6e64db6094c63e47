package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/chantierpro/finance/internal/clock"
	"github.com/chantierpro/finance/internal/config"
	"github.com/chantierpro/finance/internal/dataset"
	"github.com/chantierpro/finance/internal/fec"
	"github.com/chantierpro/finance/internal/integration"
	"github.com/chantierpro/finance/internal/margin"
	"github.com/chantierpro/finance/internal/observability"
	"github.com/chantierpro/finance/internal/providers/pdf"
	"github.com/chantierpro/finance/internal/reporting"
	"github.com/chantierpro/finance/internal/server"
	"github.com/chantierpro/finance/internal/vat"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,

		// Analytics and exports
		dataset.Module,
		margin.Module,
		vat.Module,
		fec.Module,
		pdf.Module,
		reporting.Module,

		// Accounting providers
		integration.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
