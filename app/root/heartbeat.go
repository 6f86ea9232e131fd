package root

import (
	"net/http"
	"strconv"

	"goobert/stats-api/internal"
	"goobert/stats-api/internal/stats"

	"github.com/gin-gonic/gin"
)

// StatsEnabledHeader tells the player whether the stats database is usable.
const StatsEnabledHeader = "X-Stats-Enabled"

// Heartbeat answers 200 while the stats loop is alive, 503 once it stopped.
func Heartbeat(c *gin.Context, d *internal.Deps) {
	var enabled bool

	if !d.Run(c, func(s *stats.Service) { enabled = s.Enabled() }) {
		return
	}

	c.Header(StatsEnabledHeader, strconv.FormatBool(enabled))
	c.Status(http.StatusOK)
}
