package server

import (
	"fmt"
	"strings"
	"time"

	datasetdomain "github.com/chantierpro/finance/internal/dataset/domain"
	"github.com/gin-gonic/gin"
)

// periodFromQuery reads the start and end query parameters. Both absent
// selects the calendar quarter containing now.
func periodFromQuery(c *gin.Context, now time.Time) (datasetdomain.Period, error) {
	start := strings.TrimSpace(c.Query("start"))
	end := strings.TrimSpace(c.Query("end"))
	switch {
	case start == "" && end == "":
		return quarterOf(now), nil
	case start == "" || end == "":
		return datasetdomain.Period{}, fmt.Errorf("%w: start and end go together", datasetdomain.ErrInvalidPeriod)
	default:
		return datasetdomain.ParsePeriod(start, end)
	}
}

func quarterOf(t time.Time) datasetdomain.Period {
	t = t.UTC()
	firstMonth := time.Month((int(t.Month())-1)/3*3 + 1)
	start := time.Date(t.Year(), firstMonth, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, -1)
	return datasetdomain.Period{Start: start, End: end}
}
