package sync

import "context"

// EchoMarkerStore remembers which side of the bridge was just written
// to for an entity, so the resulting change notification from that side
// can be recognised as an echo and dropped. Markers expire on their own
// after the configured ignore window.
type EchoMarkerStore interface {
	// Mark records that the given side was just written for the entity.
	// Marking is best-effort; failures are logged, not returned, since a
	// lost marker degrades to one redundant write.
	Mark(ctx context.Context, entityID string, side Side)

	// IsMarked reports whether a live marker exists for the entity and side
	IsMarked(ctx context.Context, entityID string, side Side) bool
}

// EntryClient is the CMS entry surface the orchestrators write through.
// Create returns the remote id assigned by the CMS; Update returns the
// (possibly re-created) remote id.
type EntryClient interface {
	// TypeExists reports whether the CMS exposes a content type for the
	// entity type at all. Probe failures read as absent.
	TypeExists(ctx context.Context, t EntityType) bool

	// Create inserts a new entry and returns its remote id
	Create(ctx context.Context, t EntityType, payload EntryPayload) (string, error)

	// Update writes an existing entry. ErrEntryNotFound means the entry
	// vanished remotely and the caller should re-create it.
	Update(ctx context.Context, t EntityType, remoteID string, payload EntryPayload) error

	// Delete removes an entry. A missing entry is not an error.
	Delete(ctx context.Context, t EntityType, remoteID string) error

	// Exists reports whether the entry is present. A failed probe returns
	// ErrLookupFailed and must not be read as "absent".
	Exists(ctx context.Context, t EntityType, remoteID string) (bool, error)
}

// EntryMappingRepository persists the (entity type, commerce id) to
// remote id correspondence
type EntryMappingRepository interface {
	RemoteID(ctx context.Context, t EntityType, commerceID string) (string, error)
	Save(ctx context.Context, t EntityType, commerceID, remoteID string) error
	Delete(ctx context.Context, t EntityType, commerceID string) error
}

// RetrieveOptions controls relation expansion and field projection on a
// commerce-side retrieve
type RetrieveOptions struct {
	Relations []string
	Select    []string
}

// ProductService is the commerce backend's product surface
type ProductService interface {
	Retrieve(ctx context.Context, id string, opts RetrieveOptions) (*Product, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	// ListIDsByCollection returns the ids of all products in a collection
	ListIDsByCollection(ctx context.Context, collectionID string) ([]string, error)
}

// VariantService is the commerce backend's product variant surface
type VariantService interface {
	Retrieve(ctx context.Context, id string, opts RetrieveOptions) (*ProductVariant, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

// RegionService is the commerce backend's region surface
type RegionService interface {
	Retrieve(ctx context.Context, id string, opts RetrieveOptions) (*Region, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

// CategoryService is the commerce backend's product category surface
type CategoryService interface {
	Retrieve(ctx context.Context, id string, opts RetrieveOptions) (*ProductCategory, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}

// CollectionService is the commerce backend's product collection surface
type CollectionService interface {
	Retrieve(ctx context.Context, id string, opts RetrieveOptions) (*ProductCollection, error)
	Update(ctx context.Context, id string, fields map[string]any) error
}
