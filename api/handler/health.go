package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cardapiolab/menugrab/config"
	"github.com/cardapiolab/menugrab/models"
)

// Health returns a handler for GET /api/v1/health.
func Health(cfg *config.Config, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			DevMode: cfg.Browser.DevMode,
			Version: "0.1.0",
		})
	}
}
