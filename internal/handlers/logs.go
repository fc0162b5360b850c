package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smoketrack/smoketrack/internal/domain"
	"github.com/smoketrack/smoketrack/internal/models"
	"github.com/smoketrack/smoketrack/internal/stats"
	"github.com/smoketrack/smoketrack/internal/store"
)

// RegisterLogRoutes registers the event-log endpoints. now supplies the
// reference clock for the today view.
//
// POST /logs
//   - Inserts one event stamped with the current time plus one tag row per
//     supplied trigger label, atomically.
//
// GET /logs
// - Full scan joined with triggers; events without tags carry an empty list.
// GET /logs/today
// - Only events inside the current local-midnight-to-midnight window.
// DELETE /logs/:id
// - Removes the event and its tags; 404 when the id is unknown.
func RegisterLogRoutes(r gin.IRoutes, st *store.SQLiteStore, now func() time.Time) {
	r.POST("/logs", func(c *gin.Context) {
		var req models.LogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}

		id, err := st.LogEvent(c.Request.Context(), req.Triggers)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db insert failed"})
			return
		}

		c.JSON(http.StatusCreated, models.LogResponse{ID: id})
	})

	r.GET("/logs", func(c *gin.Context) {
		logs, err := st.ListEventsWithTriggers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}
		if logs == nil {
			logs = []domain.EventWithTriggers{}
		}
		c.JSON(http.StatusOK, models.LogListResponse{Logs: logs})
	})

	r.GET("/logs/today", func(c *gin.Context) {
		logs, err := st.ListEventsWithTriggers(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
			return
		}

		start, end := stats.DayWindow(now(), 0)
		today := make([]domain.EventWithTriggers, 0, len(logs))
		for _, l := range logs {
			if !l.Timestamp.Before(start) && !l.Timestamp.After(end) {
				today = append(today, l)
			}
		}
		c.JSON(http.StatusOK, models.LogListResponse{Logs: today})
	})

	r.DELETE("/logs/:id", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
			return
		}

		switch err := st.DeleteEvent(c.Request.Context(), id); {
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "no such log"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db delete failed"})
		default:
			c.Status(http.StatusNoContent)
		}
	})
}
