package main

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bdeakin/disastermap/internal/engine"
	"github.com/bdeakin/disastermap/internal/grouping"
	"github.com/bdeakin/disastermap/internal/logger"
	"github.com/bdeakin/disastermap/internal/models"
	"github.com/bdeakin/disastermap/internal/source"
)

// newRouter wires the HTTP shell: the rendering layer posts normalized
// click/viewport/filter events and reads back the engine state to draw.
func newRouter(eng *engine.Engine, src source.DataSource, enricher *grouping.Enricher) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/state", func(c *gin.Context) {
			c.JSON(http.StatusOK, eng.State())
		})

		api.POST("/events", func(c *gin.Context) {
			raw, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
				return
			}
			ev, err := models.ParseEvent(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			state, err := eng.Apply(c.Request.Context(), ev)
			if err != nil {
				// Recoverable: the previous state is still valid; the client
				// may retry after adjusting filters.
				logger.Warn("event failed: %v", err)
				c.JSON(http.StatusBadGateway, gin.H{
					"error": err.Error(),
					"state": state,
				})
				return
			}
			c.JSON(http.StatusOK, state)
		})

		api.GET("/options", func(c *gin.Context) {
			ctx := c.Request.Context()
			states, err := src.StateOptions(ctx)
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			incidents, err := src.IncidentOptions(ctx)
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			minYear, maxYear, err := src.YearBounds(ctx)
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"states":    states,
				"incidents": incidents,
				"year_min":  minYear,
				"year_max":  maxYear,
			})
		})

		api.GET("/cache/stats", func(c *gin.Context) {
			hits, misses := eng.CacheStats()
			c.JSON(http.StatusOK, gin.H{"hits": hits, "misses": misses})
		})

		api.POST("/enrich", func(c *gin.Context) {
			if enricher == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "enrichment is disabled"})
				return
			}
			var records []grouping.InputRecord
			if err := c.ShouldBindJSON(&records); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			result, labels, err := enricher.Enrich(c.Request.Context(), records)
			if err != nil {
				c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{"result": result, "labels": labels})
		})
	}

	return r
}
