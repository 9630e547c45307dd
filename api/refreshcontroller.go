package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerRefreshRoutes(g *gin.RouterGroup) {
	g.POST("/refresh", s.handleRefresh)
}

// handleRefresh triggers a full refresh. It runs asynchronously and returns
// 202 Accepted immediately, or 409 while a refresh is in progress.
func (s *Server) handleRefresh(c *gin.Context) {
	if s.runner.Running() {
		c.JSON(http.StatusConflict, gin.H{"error": "refresh already running"})
		return
	}
	s.startRefresh()
	c.JSON(http.StatusAccepted, gin.H{"status": "refresh started"})
}
