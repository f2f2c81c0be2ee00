package sync

// Schema is the declarative per-entity-type description consumed by the
// relevance filter, the payload mapper and the orchestrators. Keeping
// the field lists in one place avoids the drift that ad-hoc per-call
// lists invite.
type Schema struct {
	Type EntityType

	// Relations to expand when retrieving the entity from the commerce
	// backend before a forward sync
	Relations []string

	// Select is the field projection for the commerce retrieve call
	Select []string

	// SyncFields is the forward-direction allow-list: an update with an
	// explicit field list propagates only when it touches one of these
	SyncFields []string

	// ReverseFields is the reverse-direction allow-list: the narrow set
	// of CMS entry fields that may be written back to the commerce side
	ReverseFields []string
}

var schemas = map[EntityType]Schema{
	EntityTypeProduct: {
		Type: EntityTypeProduct,
		Relations: []string{
			"options",
			"variants",
			"variants.prices",
			"variants.options",
			"type",
			"collection",
			"tags",
			"images",
			"categories",
		},
		Select: []string{
			"id", "title", "subtitle", "description", "handle",
			"is_giftcard", "discountable", "thumbnail",
			"weight", "length", "height", "width",
			"hs_code", "origin_country", "mid_code", "material", "metadata",
		},
		SyncFields: []string{
			"variants", "options", "tags", "title", "subtitle",
			"type", "type_id", "collection", "collection_id",
			"thumbnail", "categories",
		},
		ReverseFields: []string{"title", "subtitle", "description", "handle", "thumbnail"},
	},
	EntityTypeProductVariant: {
		Type:      EntityTypeProductVariant,
		Relations: []string{"prices", "options"},
		SyncFields: []string{
			"title", "prices", "sku", "material",
			"weight", "length", "height", "origin_country", "options",
		},
		ReverseFields: []string{"title"},
	},
	EntityTypeRegion: {
		Type: EntityTypeRegion,
		Relations: []string{
			"countries", "payment_providers", "fulfillment_providers", "currency",
		},
		Select: []string{"id", "name", "tax_rate", "tax_code", "metadata"},
		SyncFields: []string{
			"name", "currency_code", "countries",
			"payment_providers", "fulfillment_providers",
		},
		ReverseFields: []string{"name"},
	},
	EntityTypeProductCategory: {
		Type:          EntityTypeProductCategory,
		Relations:     []string{"parent_category"},
		Select:        []string{"id", "name", "description", "handle"},
		SyncFields:    []string{"name", "description", "handle", "parent_category", "parent_category_id"},
		ReverseFields: []string{"name", "description", "handle"},
	},
	EntityTypeProductCollection: {
		Type:          EntityTypeProductCollection,
		Select:        []string{"id", "title", "handle"},
		SyncFields:    []string{"title", "handle"},
		ReverseFields: []string{"title", "handle"},
	},
}

// SchemaFor returns the schema for the given entity type
func SchemaFor(t EntityType) (Schema, bool) {
	s, ok := schemas[t]
	return s, ok
}
