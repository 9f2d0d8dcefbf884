package handler

import (
	"net/http"
	"time"

	"github.com/MyDadsSoft/recoverys/internal/domain/transport"
	"github.com/gin-gonic/gin"
)

// HealthHandler reports process and gateway health
type HealthHandler struct {
	BaseHandler
	gateway   transport.Gateway
	startTime time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(gateway transport.Gateway) *HealthHandler {
	return &HealthHandler{
		gateway:   gateway,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check body
type HealthResponse struct {
	Status       string `json:"status"`
	GatewayReady bool   `json:"gatewayReady"`
	Uptime       string `json:"uptime"`
}

// Check handles GET /healthz. The process is healthy even while the gateway
// is down; readiness is reported so operators can see bot-not-ready windows.
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "ok",
		GatewayReady: h.gateway.Ready(),
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
	})
}
