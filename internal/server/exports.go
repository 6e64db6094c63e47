package server

import (
	"mime"
	"net/http"

	reportingdomain "github.com/chantierpro/finance/internal/reporting/domain"
	"github.com/gin-gonic/gin"
)

// GetExport renders one artifact for the requested period and serves it as
// an attachment. The optional encoding query applies to CSV artifacts.
func (s *Server) GetExport(c *gin.Context) {
	kind, err := reportingdomain.ParseKind(c.Param("kind"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	period, err := periodFromQuery(c, s.clock.Now())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ds, ok := s.loadDataset(c)
	if !ok {
		return
	}

	artifact, err := s.reportingSvc.Render(c.Request.Context(), ds, period, kind, reportingdomain.Options{
		Encoding: c.Query("encoding"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": artifact.FileName}))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}
