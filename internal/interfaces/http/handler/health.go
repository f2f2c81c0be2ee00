package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CMSProber reports whether the CMS answers its liveness endpoint
type CMSProber interface {
	Healthy(ctx context.Context) bool
}

// Pinger reports whether the mapping database connection is alive
type Pinger interface {
	Ping() error
}

// HealthHandler exposes the bridge's own liveness endpoint
type HealthHandler struct {
	BaseHandler
	cms CMSProber
	db  Pinger
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(cms CMSProber, db Pinger) *HealthHandler {
	return &HealthHandler{cms: cms, db: db}
}

// RegisterRoutes registers the health endpoints
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
	rg.HEAD("/health", h.Liveness)
}

// Health reports the bridge's view of its dependencies. The bridge stays
// alive when a dependency is down, so this always answers 200 with the
// per-dependency status in the body.
func (h *HealthHandler) Health(c *gin.Context) {
	dbAlive := true
	if err := h.db.Ping(); err != nil {
		dbAlive = false
	}
	h.Success(c, gin.H{
		"cms":      h.cms.Healthy(c.Request.Context()),
		"database": dbAlive,
	})
}

// Liveness answers a bare 204 for load-balancer probes
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
