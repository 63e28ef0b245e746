package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type StreamHandler struct {
	Hub http.Handler
}

func (h *StreamHandler) Register(r *gin.Engine, requireAuth gin.HandlerFunc) {
	r.GET("/api/stream/alerts", requireAuth, h.alerts)
}

// @Summary Alert snapshot stream (websocket)
// @Description Token may be passed as the access_token query parameter.
// @Tags alerts
// @Security BearerAuth
// @Param access_token query string false "session token"
// @Success 101 {string} string "switching protocols"
// @Router /api/stream/alerts [get]
func (h *StreamHandler) alerts(c *gin.Context) {
	h.Hub.ServeHTTP(c.Writer, c.Request)
}
