package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/erp/content-sync/internal/application/sync"
	"github.com/erp/content-sync/internal/domain/shared"
	domainsync "github.com/erp/content-sync/internal/domain/sync"
	"github.com/erp/content-sync/internal/interfaces/http/dto"
)

// ReverseSyncer is the slice of ReverseSyncService the CMS hook needs
type ReverseSyncer interface {
	Apply(ctx context.Context, t domainsync.EntityType, entry map[string]any) error
}

// HooksHandler receives change notifications from both sides of the
// bridge. Commerce notifications are acknowledged immediately and synced
// through the event bus; CMS notifications are applied synchronously so
// the CMS can retry on failure.
type HooksHandler struct {
	BaseHandler
	bus     shared.EventPublisher
	reverse ReverseSyncer
	logger  *zap.Logger
}

// NewHooksHandler creates a new HooksHandler
func NewHooksHandler(bus shared.EventPublisher, reverse ReverseSyncer, logger *zap.Logger) *HooksHandler {
	return &HooksHandler{
		bus:     bus,
		reverse: reverse,
		logger:  logger,
	}
}

// RegisterRoutes registers the hook endpoints
func (h *HooksHandler) RegisterRoutes(rg *gin.RouterGroup) {
	hooks := rg.Group("/hooks")
	hooks.POST("/commerce", h.HandleCommerceHook)
	hooks.POST("/cms", h.HandleCMSHook)
}

// HandleCommerceHook accepts a commerce change notification and hands it
// to the forward sync pipeline. The notification is acknowledged with 202
// once published; sync failures are logged by the bus, not surfaced here.
func (h *HooksHandler) HandleCommerceHook(c *gin.Context) {
	var req dto.CommerceHookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entityType := domainsync.EntityType(req.EntityType)
	if !entityType.IsValid() {
		h.BadRequest(c, "unknown entity type: "+req.EntityType)
		return
	}

	event := appsync.NewChangeEvent(entityType, req.Event, req.ID, req.Fields)
	if err := h.bus.Publish(c.Request.Context(), event); err != nil {
		h.logger.Error("failed to publish change event",
			zap.String("entity_type", req.EntityType),
			zap.String("event", req.Event),
			zap.String("id", req.ID),
			zap.Error(err))
		h.InternalError(c, "failed to enqueue change")
		return
	}

	h.Accepted(c, gin.H{"entity_type": req.EntityType, "event": req.Event, "id": req.ID})
}

// HandleCMSHook applies a CMS entry edit to the commerce backend. A
// failure answers non-2xx so the CMS-side webhook can retry.
func (h *HooksHandler) HandleCMSHook(c *gin.Context) {
	var req dto.CMSHookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entityType := domainsync.EntityType(req.EntityType)
	if !entityType.IsValid() {
		h.BadRequest(c, "unknown entity type: "+req.EntityType)
		return
	}

	if err := h.reverse.Apply(c.Request.Context(), entityType, req.Entry); err != nil {
		h.logger.Error("reverse sync failed",
			zap.String("entity_type", req.EntityType),
			zap.Error(err))
		h.InternalError(c, "failed to apply cms edit")
		return
	}

	h.Success(c, gin.H{"entity_type": req.EntityType})
}
