// Package app wires the HTTP endpoints
package app

import (
	"net/http"
	"time"

	"goobert/stats-api/app/analytics"
	"goobert/stats-api/app/event"
	"goobert/stats-api/app/export"
	"goobert/stats-api/app/root"
	"goobert/stats-api/app/session"
	"goobert/stats-api/internal"
	"goobert/stats-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// maxIngestBody caps session and event payloads.
const maxIngestBody = 64 << 10

type handler func(c *gin.Context, d *internal.Deps)

func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	origins := viper.GetStringSlice("host.cors")
	if len(origins) == 0 {
		origins = []string{"http://localhost:5000"}
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				// The player reports positions several times a second
				return c.Request.Method == http.MethodHead || c.FullPath() == "/api/sessions/position"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	rateLimit := viper.GetInt("security.rate_limit")
	if rateLimit <= 0 {
		rateLimit = 20
	}

	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})
	bodyLimit := middleware.BodySizeLimiter(maxIngestBody)

	// Reads are cached briefly, dashboards poll a lot. Every cached route
	// shares one store so a mutation can drop all of it.
	store := persist.NewMemoryStore(time.Minute)
	cacheFor := func(sec int) gin.HandlerFunc {
		return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
	}

	invalidate := func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		if err := store.Cache.Purge(); err != nil {
			zap.L().Warn("Failed to purge response cache", zap.Error(err))
		}
	}

	with := func(h handler) gin.HandlerFunc {
		return func(c *gin.Context) { h(c, d) }
	}

	// Player ingest (sessions, POST events) is not rate limited
	m := router.Group("/api")
	{
		// HEAD /api/heartbeat 			-> Used to check if the server is alive
		m.HEAD("/heartbeat", rateLimiter, with(root.Heartbeat))
	}

	s := m.Group("/sessions", bodyLimit)
	{
		// POST /api/sessions/start		-> Starts tracking a file in a grid cell
		s.POST("/start", invalidate, with(session.Start))

		// POST /api/sessions/stop		-> Finalizes the session of a grid cell
		s.POST("/stop", invalidate, with(session.Stop))

		// POST /api/sessions/stop-all		-> Finalizes every active session
		s.POST("/stop-all", invalidate, with(session.StopAll))

		// POST /api/sessions/position		-> Updates the playback position of a cell
		s.POST("/position", with(session.Position))

		// POST /api/sessions/pause		-> Pauses or resumes a cell
		s.POST("/pause", with(session.Pause))

		// GET /api/sessions/active		-> Lists the sessions in progress
		s.GET("/active", with(session.Active))
	}

	e := m.Group("/events")
	{
		// POST /api/events/:kind		-> Logs one player event
		e.POST("/:kind", bodyLimit, invalidate, with(event.Record))

		// GET /api/events			-> Merged skip/loop/fullscreen feed
		e.GET("", rateLimiter, cacheFor(5), with(event.Feed))

		// GET /api/events/:kind		-> History of one event kind
		e.GET("/:kind", rateLimiter, cacheFor(5), with(event.History))
	}

	st := m.Group("/stats", rateLimiter)
	{
		// GET /api/stats/summary		-> Dashboard headline figures
		st.GET("/summary", cacheFor(5), with(analytics.Summary))

		// GET /api/stats/hourly		-> Watch time per hour of day
		st.GET("/hourly", cacheFor(30), with(analytics.Hourly))

		// GET /api/stats/daily			-> Watch time per day of week
		st.GET("/daily", cacheFor(30), with(analytics.Daily))

		// GET /api/stats/timeline		-> Watch time per calendar day
		st.GET("/timeline", cacheFor(30), with(analytics.Timeline))

		// GET /api/stats/top-files		-> Most watched files
		st.GET("/top-files", cacheFor(5), with(analytics.TopFiles))

		// GET /api/stats/recent-files		-> Recently watched files
		st.GET("/recent-files", cacheFor(5), with(analytics.RecentFiles))

		// GET /api/stats/recent-sessions	-> Latest finished sessions
		st.GET("/recent-sessions", cacheFor(5), with(analytics.RecentSessions))

		// GET /api/stats/directories		-> Watch time per directory
		st.GET("/directories", cacheFor(30), with(analytics.Directories))

		// GET /api/stats/completion		-> How far files get watched
		st.GET("/completion", cacheFor(30), with(analytics.Completion))

		// GET /api/stats/range			-> Totals for a period or time window
		st.GET("/range", cacheFor(5), with(analytics.Range))

		// GET /api/stats/file			-> Everything known about one file
		st.GET("/file", with(analytics.File))

		// DELETE /api/stats			-> Wipes all statistics
		st.DELETE("", invalidate, with(export.Clear))
	}

	x := m.Group("/export", rateLimiter)
	{
		// GET /api/export/files.csv		-> Per-file totals as CSV
		x.GET("/files.csv", with(export.FileStatsCSV))

		// GET /api/export/sessions.csv		-> Finished sessions as CSV
		x.GET("/sessions.csv", with(export.SessionsCSV))

		// POST /api/export/snapshot		-> Writes both CSVs to the export directory
		x.POST("/snapshot", with(export.Snapshot))
	}

	return router
}
