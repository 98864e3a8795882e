package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/BioTerm-Annotator/internal/application/annotator"
	"github.com/turtacn/BioTerm-Annotator/internal/interfaces/http/middleware"
	"github.com/turtacn/BioTerm-Annotator/pkg/types"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	service annotator.Service
}

// NewHealthHandler creates the probe handler.
func NewHealthHandler(service annotator.Service) *HealthHandler {
	return &HealthHandler{service: service}
}

// Liveness handles GET /healthz.  It confirms only that the process serves
// requests; external dependencies are not probed.
func (h *HealthHandler) Liveness(c *gin.Context) {
	writeSuccess(c, http.StatusOK, types.HealthStatus{Status: "up"})
}

// Readiness handles GET /readyz.  Any failing component degrades the status
// and answers 503 so load balancers stop routing here.
func (h *HealthHandler) Readiness(c *gin.Context) {
	components := h.service.Health(c.Request.Context())

	status := "up"
	code := http.StatusOK
	for _, up := range components {
		if !up {
			status = "degraded"
			code = http.StatusServiceUnavailable
			break
		}
	}

	c.JSON(code, types.APIResponse[types.HealthStatus]{
		Success:   code == http.StatusOK,
		Data:      types.HealthStatus{Status: status, Components: components},
		RequestID: middleware.GetRequestID(c),
		Timestamp: time.Now().UTC(),
	})
}
