package analytics

import (
	"net/http"
	"strconv"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
)

// Range summarizes either a named period (?period=today|week|month) or an
// explicit ?start=&end= window in unix milliseconds.
func Range(c *gin.Context, d *internal.Deps) {
	period := c.Query("period")

	var start, end int64

	if period == "" {
		var err error

		start, err = strconv.ParseInt(c.Query("start"), 10, 64)
		if err != nil {
			internal.BadRequest(c, "Invalid start provided")
			return
		}

		end, err = strconv.ParseInt(c.Query("end"), 10, 64)
		if err != nil || end < start {
			internal.BadRequest(c, "Invalid end provided")
			return
		}
	} else if period != "today" && period != "week" && period != "month" {
		internal.BadRequest(c, "Invalid period provided")
		return
	}

	var out stats.TimeRangeStats

	if !d.Run(c, func(s *stats.Service) {
		now := s.Clock.Now()

		switch period {
		case "today":
			out = s.Analytics.StatsForToday(now)
		case "week":
			out = s.Analytics.StatsForThisWeek(now)
		case "month":
			out = s.Analytics.StatsForThisMonth(now)
		default:
			out = s.Analytics.StatsForRange(start, end)
		}
	}) {
		return
	}

	c.JSON(http.StatusOK, out)
}
