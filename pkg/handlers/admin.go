package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Cache.Stats())
}

func (h *Handler) PurgeCache(c *gin.Context) {
	path := c.Query("path")
	if path != "" {
		c.JSON(http.StatusOK, gin.H{"status": "purged", "path": path, "dropped": h.Cache.Invalidate(path)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "purged", "dropped": h.Cache.InvalidateAll()})
}
