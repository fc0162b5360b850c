package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smoketrack/smoketrack/internal/service"
)

// defaultTopTriggers is how many triggers GET /stats/triggers returns when
// no limit is given, matching what the stats screen renders.
const defaultTopTriggers = 5

// RegisterStatsRoutes registers the read-only statistics endpoints. These
// never fail: a broken store read degrades to the zero-valued view (handled
// inside the service), so the UI always has something to render.
func RegisterStatsRoutes(r gin.IRoutes, svc *service.StatsService) {
	r.GET("/stats/summary", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Summary(c.Request.Context()))
	})

	r.GET("/stats/weekly", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counts": svc.WeeklyBreakdown(c.Request.Context()),
		})
	})

	r.GET("/stats/weekly/detailed", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"days": svc.DetailedWeeklyBreakdown(c.Request.Context()),
		})
	})

	r.GET("/stats/monthly", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counts": svc.MonthlyBreakdown(c.Request.Context()),
		})
	})

	r.GET("/stats/yearly", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counts": svc.YearlyBreakdown(c.Request.Context()),
		})
	})

	r.GET("/stats/last3days", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"counts": svc.LastThreeDays(c.Request.Context()),
		})
	})

	r.GET("/stats/triggers", func(c *gin.Context) {
		limit := defaultTopTriggers
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}
		c.JSON(http.StatusOK, gin.H{
			"triggers": svc.TopTriggers(c.Request.Context(), limit),
		})
	})

	r.GET("/stats/triggers/top", func(c *gin.Context) {
		top, ok := svc.TopTrigger(c.Request.Context())
		if !ok {
			// No tagged events in the window: absent, not an error.
			c.JSON(http.StatusOK, gin.H{"trigger": nil})
			return
		}
		c.JSON(http.StatusOK, gin.H{"trigger": top})
	})
}
