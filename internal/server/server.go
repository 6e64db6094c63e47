package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/chantierpro/finance/internal/clock"
	"github.com/chantierpro/finance/internal/config"
	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	margindomain "github.com/chantierpro/finance/internal/margin/domain"
	"github.com/chantierpro/finance/internal/observability"
	obslogger "github.com/chantierpro/finance/internal/observability/logger"
	obstracing "github.com/chantierpro/finance/internal/observability/tracing"
	reportingdomain "github.com/chantierpro/finance/internal/reporting/domain"
	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) { s.RegisterRoutes() }),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// RunHTTP binds the listener during start; a bind failure aborts startup.
func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	clock          clock.Clock
	source         datasetdomain.Source
	marginSvc      margindomain.Service
	vatSvc         vatdomain.Service
	reportingSvc   reportingdomain.Service
	integrationSvc integrationdomain.Service
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	Clock          clock.Clock `optional:"true"`
	Source         datasetdomain.Source
	MarginSvc      margindomain.Service
	VATSvc         vatdomain.Service
	ReportingSvc   reportingdomain.Service
	IntegrationSvc integrationdomain.Service
}

func NewServer(p ServerParams) *Server {
	c := p.Clock
	if c == nil {
		c = clock.New()
	}
	return &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		clock:          c,
		source:         p.Source,
		marginSvc:      p.MarginSvc,
		vatSvc:         p.VATSvc,
		reportingSvc:   p.ReportingSvc,
		integrationSvc: p.IntegrationSvc,
	}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api", s.TokenRequired())

	// -------- Analytics --------
	api.GET("/portfolio", s.GetPortfolio)
	api.GET("/projects/:id/margin", s.GetProjectMargin)
	api.GET("/vat/summary", s.GetVATSummary)

	// -------- Exports --------
	api.GET("/exports/:kind", s.GetExport)

	// -------- Integrations --------
	api.GET("/integrations", s.ListIntegrations)
	api.PUT("/integrations/:provider", s.ConnectIntegration)
	api.DELETE("/integrations/:provider", s.DisconnectIntegration)
	api.POST("/integrations/:provider/sync", s.SyncIntegration)

	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}

// loadDataset reads a fresh copy of the source for one request.
func (s *Server) loadDataset(c *gin.Context) (datasetdomain.Dataset, bool) {
	ds, err := s.source.Load(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return datasetdomain.Dataset{}, false
	}
	return ds, true
}
