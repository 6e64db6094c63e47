package server

import (
	"errors"
	"net/http"

	integrationdomain "github.com/chantierpro/finance/internal/integration/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type connectIntegrationRequest struct {
	Config map[string]any `json:"config"`
}

func (s *Server) ListIntegrations(c *gin.Context) {
	summaries, err := s.integrationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summaries})
}

func (s *Server) ConnectIntegration(c *gin.Context) {
	var req connectIntegrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	summary, err := s.integrationSvc.Connect(c.Request.Context(), integrationdomain.ConnectRequest{
		Provider: c.Param("provider"),
		Config:   req.Config,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) DisconnectIntegration(c *gin.Context) {
	if err := s.integrationSvc.Disconnect(c.Request.Context(), c.Param("provider")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SyncIntegration pushes the period to the provider. A partial sync still
// answers with the result, under 207.
func (s *Server) SyncIntegration(c *gin.Context) {
	period, err := periodFromQuery(c, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}

	provider := c.Param("provider")
	result, err := s.integrationSvc.Sync(c.Request.Context(), provider, ds, period)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, integrationdomain.ErrPartialSync):
		s.log.Warn("partial sync",
			zap.String("provider", provider),
			zap.Int("rejected", result.Rejected),
		)
		c.JSON(http.StatusMultiStatus, result)
	default:
		AbortWithError(c, err)
	}
}
