package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func listBusinessesHandler(businesses BusinessLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := requireAdmin(c); user == nil {
			return
		}
		if businesses == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "businesses unavailable"})
			return
		}
		list, err := businesses.List(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func adminLogsHandler(audit AuditLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := requireAdmin(c); user == nil {
			return
		}
		if audit == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit log unavailable"})
			return
		}
		list, err := audit.List(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
