package sync

import (
	"context"
	"fmt"

	"github.com/erp/content-sync/internal/domain/shared"
	"github.com/erp/content-sync/internal/domain/sync"
)

// Commerce change event types, one per entity type and action
const (
	EventProductCreated    = "product.created"
	EventProductUpdated    = "product.updated"
	EventProductDeleted    = "product.deleted"
	EventVariantCreated    = "product-variant.created"
	EventVariantUpdated    = "product-variant.updated"
	EventVariantDeleted    = "product-variant.deleted"
	EventRegionCreated     = "region.created"
	EventRegionUpdated     = "region.updated"
	EventRegionDeleted     = "region.deleted"
	EventCategoryCreated   = "product-category.created"
	EventCategoryUpdated   = "product-category.updated"
	EventCategoryDeleted   = "product-category.deleted"
	EventCollectionCreated = "product-collection.created"
	EventCollectionUpdated = "product-collection.updated"
	EventCollectionDeleted = "product-collection.deleted"
)

// ChangeEvent is a commerce-side change notification carried over the
// event bus. Fields is nil when the source did not report which fields
// changed.
type ChangeEvent struct {
	shared.BaseDomainEvent
	Fields []string `json:"fields,omitempty"`
}

// NewChangeEvent creates a change event for the given entity type and action
func NewChangeEvent(t sync.EntityType, action string, entityID string, fields []string) *ChangeEvent {
	return &ChangeEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			fmt.Sprintf("%s.%s", t.String(), action),
			t.String(),
			entityID,
		),
		Fields: fields,
	}
}

// ForwardSyncer is the slice of ForwardSyncService the event handler needs
type ForwardSyncer interface {
	CreateProduct(ctx context.Context, id string) error
	UpdateProduct(ctx context.Context, id string, fields []string) error
	DeleteProduct(ctx context.Context, id string) error
	CreateVariant(ctx context.Context, id string) error
	UpdateVariant(ctx context.Context, id string, fields []string) error
	DeleteVariant(ctx context.Context, id string) error
	CreateRegion(ctx context.Context, id string) error
	UpdateRegion(ctx context.Context, id string, fields []string) error
	DeleteRegion(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, id string) error
	UpdateCategory(ctx context.Context, id string, fields []string) error
	DeleteCategory(ctx context.Context, id string) error
	CreateCollection(ctx context.Context, id string) error
	UpdateCollection(ctx context.Context, id string, fields []string) error
	DeleteCollection(ctx context.Context, id string) error
	UpdateProductsWithinCollection(ctx context.Context, collectionID string) error
}

// SyncEventHandler routes commerce change events into the forward
// orchestrator
type SyncEventHandler struct {
	forward ForwardSyncer
}

// NewSyncEventHandler creates a new SyncEventHandler
func NewSyncEventHandler(forward ForwardSyncer) *SyncEventHandler {
	return &SyncEventHandler{forward: forward}
}

// Handle processes a commerce change event
func (h *SyncEventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	change, ok := event.(*ChangeEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for type %s", event, event.EventType())
	}
	id := change.AggregateID()

	switch change.EventType() {
	case EventProductCreated:
		return h.forward.CreateProduct(ctx, id)
	case EventProductUpdated:
		return h.forward.UpdateProduct(ctx, id, change.Fields)
	case EventProductDeleted:
		return h.forward.DeleteProduct(ctx, id)
	case EventVariantCreated:
		return h.forward.CreateVariant(ctx, id)
	case EventVariantUpdated:
		return h.forward.UpdateVariant(ctx, id, change.Fields)
	case EventVariantDeleted:
		return h.forward.DeleteVariant(ctx, id)
	case EventRegionCreated:
		return h.forward.CreateRegion(ctx, id)
	case EventRegionUpdated:
		return h.forward.UpdateRegion(ctx, id, change.Fields)
	case EventRegionDeleted:
		return h.forward.DeleteRegion(ctx, id)
	case EventCategoryCreated:
		return h.forward.CreateCategory(ctx, id)
	case EventCategoryUpdated:
		return h.forward.UpdateCategory(ctx, id, change.Fields)
	case EventCategoryDeleted:
		return h.forward.DeleteCategory(ctx, id)
	case EventCollectionCreated:
		return h.forward.CreateCollection(ctx, id)
	case EventCollectionUpdated:
		if err := h.forward.UpdateCollection(ctx, id, change.Fields); err != nil {
			return err
		}
		return h.forward.UpdateProductsWithinCollection(ctx, id)
	case EventCollectionDeleted:
		return h.forward.DeleteCollection(ctx, id)
	default:
		return fmt.Errorf("%w: event %s", sync.ErrUnknownEntityType, change.EventType())
	}
}

// EventTypes returns the event types this handler subscribes to
func (h *SyncEventHandler) EventTypes() []string {
	return []string{
		EventProductCreated, EventProductUpdated, EventProductDeleted,
		EventVariantCreated, EventVariantUpdated, EventVariantDeleted,
		EventRegionCreated, EventRegionUpdated, EventRegionDeleted,
		EventCategoryCreated, EventCategoryUpdated, EventCategoryDeleted,
		EventCollectionCreated, EventCollectionUpdated, EventCollectionDeleted,
	}
}

// Ensure SyncEventHandler implements shared.EventHandler
var _ shared.EventHandler = (*SyncEventHandler)(nil)

// Ensure ForwardSyncService satisfies the handler's dependency
var _ ForwardSyncer = (*ForwardSyncService)(nil)
