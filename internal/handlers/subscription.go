package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smoketrack/smoketrack/internal/models"
	"github.com/smoketrack/smoketrack/internal/purchases"
)

// RegisterSubscriptionRoutes registers the paywall endpoints. The events and
// stats routes stay fully functional when the purchases service is mocked or
// unconfigured; only these endpoints touch it.
func RegisterSubscriptionRoutes(r gin.IRoutes, svc *purchases.Service) {
	r.GET("/subscription/offerings", func(c *gin.Context) {
		// nil means nothing to present (mock mode, or no current
		// offering on the backend).
		c.JSON(http.StatusOK, gin.H{
			"offering": svc.GetOfferings(c.Request.Context()),
			"mode":     svc.Mode().String(),
		})
	})

	r.POST("/subscription/purchase", func(c *gin.Context) {
		var req models.PurchaseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
			return
		}
		if req.PackageID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "package_id required"})
			return
		}

		info, err := svc.Purchase(c.Request.Context(), req.PackageID)
		if err != nil {
			c.JSON(http.StatusBadGateway, models.PurchaseResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, models.PurchaseResponse{Success: true, Info: info})
	})

	r.POST("/subscription/restore", func(c *gin.Context) {
		info, err := svc.Restore(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusBadGateway, models.PurchaseResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, models.PurchaseResponse{Success: true, Info: info})
	})

	r.GET("/subscription/status", func(c *gin.Context) {
		status := svc.CheckStatus(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"status": status,
			"active": status == purchases.StatusActive,
		})
	})
}
