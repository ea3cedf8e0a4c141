package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardapiolab/menugrab/api/handler"
	"github.com/cardapiolab/menugrab/api/middleware"
	"github.com/cardapiolab/menugrab/cache"
	"github.com/cardapiolab/menugrab/config"
	"github.com/cardapiolab/menugrab/scrape"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(o *scrape.Orchestrator, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(cfg, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Scrape
	protected.POST("/scrape", handler.Scrape(o, cc))

	// Batch
	protected.POST("/batch/scrape", handler.PostBatch(o, cfg))
	protected.GET("/batch/:id", handler.GetBatch())

	return r
}
