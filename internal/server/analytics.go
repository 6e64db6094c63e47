package server

import (
	"net/http"
	"strings"

	vatdomain "github.com/chantierpro/finance/internal/vat/domain"
	"github.com/gin-gonic/gin"
)

type vatSummaryResponse struct {
	Summary     vatdomain.Summary     `json:"summary"`
	Declaration vatdomain.Declaration `json:"declaration"`
	Deadline    *vatdomain.Deadline   `json:"next_deadline,omitempty"`
}

func (s *Server) GetPortfolio(c *gin.Context) {
	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}

	portfolio, err := s.marginSvc.Portfolio(c.Request.Context(), ds)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, portfolio)
}

func (s *Server) GetProjectMargin(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		AbortWithError(c, ErrNotFound)
		return
	}

	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}

	report, err := s.marginSvc.ProjectMargin(c.Request.Context(), ds, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) GetVATSummary(c *gin.Context) {
	period, err := periodFromQuery(c, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	summary, err := s.vatSvc.Summary(ctx, ds, period)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := vatSummaryResponse{
		Summary:     summary,
		Declaration: s.vatSvc.Declaration(ctx, summary),
	}
	if deadline, ok := s.vatSvc.NextDeadline(ctx); ok {
		resp.Deadline = &deadline
	}
	c.JSON(http.StatusOK, resp)
}
