package sync

// ---------------------------------------------------------------------------
// EntityType identifies a kind of synced entity
// ---------------------------------------------------------------------------

// EntityType identifies a kind of entity shared between the commerce
// backend and the CMS
type EntityType string

const (
	// EntityTypeProduct is a commerce product
	EntityTypeProduct EntityType = "product"
	// EntityTypeProductVariant is a sellable variant of a product
	EntityTypeProductVariant EntityType = "product-variant"
	// EntityTypeRegion is a commerce region (currency, countries, providers)
	EntityTypeRegion EntityType = "region"
	// EntityTypeProductCategory is a product category
	EntityTypeProductCategory EntityType = "product-category"
	// EntityTypeProductCollection is a product collection
	EntityTypeProductCollection EntityType = "product-collection"
	// EntityTypeImage is an auxiliary image asset attached to a product
	EntityTypeImage EntityType = "image"
)

// IsValid returns true if the entity type is valid
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeProduct, EntityTypeProductVariant, EntityTypeRegion,
		EntityTypeProductCategory, EntityTypeProductCollection, EntityTypeImage:
		return true
	default:
		return false
	}
}

// String returns the string representation of EntityType
func (t EntityType) String() string {
	return string(t)
}

// ContentType returns the CMS content type name for this entity type
func (t EntityType) ContentType() string {
	switch t {
	case EntityTypeProduct:
		return "products"
	case EntityTypeProductVariant:
		return "product-variants"
	case EntityTypeRegion:
		return "regions"
	case EntityTypeProductCategory:
		return "product-categories"
	case EntityTypeProductCollection:
		return "product-collections"
	case EntityTypeImage:
		return "images"
	default:
		return string(t)
	}
}

// ---------------------------------------------------------------------------
// Side identifies one of the two synced systems
// ---------------------------------------------------------------------------

// Side identifies one of the two synced systems. An echo marker for
// (entity, side) means the most recent write to that side was performed
// by this service, not an external actor.
type Side string

const (
	// SideCommerce is the commerce backend
	SideCommerce Side = "commerce"
	// SideCMS is the content-management backend
	SideCMS Side = "cms"
)

// IsValid returns true if the side is valid
func (s Side) IsValid() bool {
	return s == SideCommerce || s == SideCMS
}

// String returns the string representation of Side
func (s Side) String() string {
	return string(s)
}
