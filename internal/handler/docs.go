package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterDocs serves a short operator guide; the full schema lives under /swagger.
func RegisterDocs(r *gin.Engine) {
	r.GET("/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/markdown; charset=utf-8")
		c.String(http.StatusOK, `# TurbineAI API

## Login

1. POST /api/auth/request-otp {"email": "you@example.com"}
2. Read the code from your inbox (or the server log in dev mode).
3. POST /api/auth/verify-otp {"email": "you@example.com", "otp": "123456"}
4. Send "Authorization: Bearer <access_token>" on every /api/* call.

## Routes

- GET /healthz, GET /readyz
- GET /api/model/status
- GET /api/auth/me
- GET /api/machines, GET /api/machines/:id, GET /api/machines/:id/history?limit=
- POST /api/predict {"temperature", "vibration", "current"}
- GET /api/predictions?limit=&offset=
- GET /api/alerts, GET /api/alerts/history
- GET /api/dashboard/stats
- GET /api/stream/alerts (websocket, token via access_token query)
- GET /metrics
- GET /swagger/index.html
`)
	})
}
