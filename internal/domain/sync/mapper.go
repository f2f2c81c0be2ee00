package sync

// EntryPayload is the flat shape the CMS accepts for an entry. Nested
// relation objects are flattened by renaming their identity field to a
// type-qualified name, since the CMS schema stores relations as scalar
// or array references.
type EntryPayload map[string]any

// AssetRef references a CMS image entry from a product payload
type AssetRef struct {
	Image string `json:"image"`
}

// Mapper translates commerce entities into CMS entry payloads and CMS
// entries back into narrow commerce-side partial updates. Custom field
// remaps (from configuration) rename top-level payload keys per entity
// type before the payload leaves the process.
type Mapper struct {
	remaps map[EntityType]map[string]string
}

// NewMapper creates a mapper with the given per-entity-type field remaps
func NewMapper(remaps map[EntityType]map[string]string) *Mapper {
	if remaps == nil {
		remaps = map[EntityType]map[string]string{}
	}
	return &Mapper{remaps: remaps}
}

// ---------------------------------------------------------------------------
// Forward direction: commerce entity -> CMS entry payload
// ---------------------------------------------------------------------------

// ProductPayload flattens a product into its CMS entry shape. Image
// assets are created separately; the resulting references are attached
// here in the order they were propagated.
func (m *Mapper) ProductPayload(p *Product, assets []AssetRef) EntryPayload {
	payload := EntryPayload{
		"commerce_id":    p.ID,
		"title":          p.Title,
		"subtitle":       p.Subtitle,
		"description":    p.Description,
		"handle":         p.Handle,
		"is_giftcard":    p.IsGiftcard,
		"discountable":   p.Discountable,
		"thumbnail":      p.Thumbnail,
		"weight":         p.Weight,
		"length":         p.Length,
		"height":         p.Height,
		"width":          p.Width,
		"hs_code":        p.HSCode,
		"origin_country": p.OriginCountry,
		"mid_code":       p.MIDCode,
		"material":       p.Material,
		"metadata":       orEmptyMetadata(p.Metadata),
	}

	if p.Type != nil {
		payload["product_type_id"] = p.Type.ID
	}
	if p.Collection != nil {
		payload["product_collection_id"] = p.Collection.ID
	}
	if len(p.Tags) > 0 {
		ids := make([]string, 0, len(p.Tags))
		for _, t := range p.Tags {
			ids = append(ids, t.ID)
		}
		payload["product_tag_ids"] = ids
	}
	if len(p.Options) > 0 {
		ids := make([]string, 0, len(p.Options))
		for _, o := range p.Options {
			ids = append(ids, o.ID)
		}
		payload["product_option_ids"] = ids
	}
	if len(p.Variants) > 0 {
		ids := make([]string, 0, len(p.Variants))
		for _, v := range p.Variants {
			ids = append(ids, v.ID)
		}
		payload["product_variant_ids"] = ids
	}
	if len(p.Categories) > 0 {
		ids := make([]string, 0, len(p.Categories))
		for _, c := range p.Categories {
			ids = append(ids, c.ID)
		}
		payload["product_category_ids"] = ids
	}
	if len(assets) > 0 {
		payload["images"] = assets
	}

	return m.applyRemaps(EntityTypeProduct, payload)
}

// VariantPayload flattens a product variant into its CMS entry shape
func (m *Mapper) VariantPayload(v *ProductVariant) EntryPayload {
	payload := EntryPayload{
		"commerce_id":    v.ID,
		"title":          v.Title,
		"sku":            v.SKU,
		"material":       v.Material,
		"weight":         v.Weight,
		"length":         v.Length,
		"height":         v.Height,
		"origin_country": v.OriginCountry,
		"metadata":       orEmptyMetadata(v.Metadata),
	}

	if v.ProductID != "" {
		payload["product_id"] = v.ProductID
	}
	if len(v.Prices) > 0 {
		prices := make([]map[string]any, 0, len(v.Prices))
		for _, p := range v.Prices {
			prices = append(prices, map[string]any{
				"currency_code": p.CurrencyCode,
				"amount":        p.Amount,
			})
		}
		payload["prices"] = prices
	}
	if len(v.Options) > 0 {
		opts := make([]map[string]any, 0, len(v.Options))
		for _, o := range v.Options {
			opts = append(opts, map[string]any{
				"product_option_id": o.OptionID,
				"value":             o.Value,
			})
		}
		payload["options"] = opts
	}

	return m.applyRemaps(EntityTypeProductVariant, payload)
}

// RegionPayload flattens a region into its CMS entry shape
func (m *Mapper) RegionPayload(r *Region) EntryPayload {
	payload := EntryPayload{
		"commerce_id": r.ID,
		"name":        r.Name,
		"tax_rate":    r.TaxRate,
		"tax_code":    r.TaxCode,
		"metadata":    orEmptyMetadata(r.Metadata),
	}

	switch {
	case r.CurrencyCode != "":
		payload["currency_code"] = r.CurrencyCode
	case r.Currency != nil:
		payload["currency_code"] = r.Currency.Code
	}
	if len(r.Countries) > 0 {
		codes := make([]string, 0, len(r.Countries))
		for _, c := range r.Countries {
			codes = append(codes, c.ISO2)
		}
		payload["countries"] = codes
	}
	if len(r.PaymentProviders) > 0 {
		ids := make([]string, 0, len(r.PaymentProviders))
		for _, p := range r.PaymentProviders {
			ids = append(ids, p.ID)
		}
		payload["payment_provider_ids"] = ids
	}
	if len(r.FulfillmentProviders) > 0 {
		ids := make([]string, 0, len(r.FulfillmentProviders))
		for _, p := range r.FulfillmentProviders {
			ids = append(ids, p.ID)
		}
		payload["fulfillment_provider_ids"] = ids
	}

	return m.applyRemaps(EntityTypeRegion, payload)
}

// CategoryPayload flattens a product category into its CMS entry shape
func (m *Mapper) CategoryPayload(c *ProductCategory) EntryPayload {
	payload := EntryPayload{
		"commerce_id": c.ID,
		"name":        c.Name,
		"description": c.Description,
		"handle":      c.Handle,
	}
	if c.ParentCategory != nil {
		payload["parent_category_id"] = c.ParentCategory.ID
	}
	return m.applyRemaps(EntityTypeProductCategory, payload)
}

// CollectionPayload flattens a product collection into its CMS entry shape
func (m *Mapper) CollectionPayload(c *ProductCollection) EntryPayload {
	payload := EntryPayload{
		"commerce_id": c.ID,
		"title":       c.Title,
		"handle":      c.Handle,
		"metadata":    orEmptyMetadata(c.Metadata),
	}
	return m.applyRemaps(EntityTypeProductCollection, payload)
}

// ImagePayload builds the CMS entry for a product image asset
func (m *Mapper) ImagePayload(img Image) EntryPayload {
	payload := EntryPayload{
		"image_id": img.ID,
		"url":      img.URL,
		"metadata": orEmptyMetadata(img.Metadata),
	}
	return m.applyRemaps(EntityTypeImage, payload)
}

// applyRemaps renames top-level payload keys per the configured custom
// field remaps for the entity type
func (m *Mapper) applyRemaps(t EntityType, payload EntryPayload) EntryPayload {
	remap, ok := m.remaps[t]
	if !ok || len(remap) == 0 {
		return payload
	}
	for from, to := range remap {
		if v, present := payload[from]; present && to != "" && to != from {
			payload[to] = v
			delete(payload, from)
		}
	}
	return payload
}

// ---------------------------------------------------------------------------
// Reverse direction: CMS entry -> commerce partial update
// ---------------------------------------------------------------------------

// ProductLocalUpdate diffs a CMS product entry against the current
// commerce product. Only fields present in the entry and differing are
// included; an empty result means no local write should happen.
func ProductLocalUpdate(entry map[string]any, p *Product) map[string]any {
	update := map[string]any{}
	diffString(update, entry, "title", p.Title)
	diffString(update, entry, "subtitle", p.Subtitle)
	diffString(update, entry, "description", p.Description)
	diffString(update, entry, "handle", p.Handle)
	diffString(update, entry, "thumbnail", p.Thumbnail)
	return update
}

// VariantLocalUpdate diffs a CMS variant entry against the current variant
func VariantLocalUpdate(entry map[string]any, v *ProductVariant) map[string]any {
	update := map[string]any{}
	diffString(update, entry, "title", v.Title)
	return update
}

// RegionLocalUpdate diffs a CMS region entry against the current region
func RegionLocalUpdate(entry map[string]any, r *Region) map[string]any {
	update := map[string]any{}
	diffString(update, entry, "name", r.Name)
	return update
}

// CategoryLocalUpdate diffs a CMS category entry against the current category
func CategoryLocalUpdate(entry map[string]any, c *ProductCategory) map[string]any {
	update := map[string]any{}
	diffString(update, entry, "name", c.Name)
	diffString(update, entry, "description", c.Description)
	diffString(update, entry, "handle", c.Handle)
	return update
}

// CollectionLocalUpdate diffs a CMS collection entry against the current collection
func CollectionLocalUpdate(entry map[string]any, c *ProductCollection) map[string]any {
	update := map[string]any{}
	diffString(update, entry, "title", c.Title)
	diffString(update, entry, "handle", c.Handle)
	return update
}

// diffString records entry[key] into update when the entry carries the
// key as a string and its value differs from current
func diffString(update, entry map[string]any, key, current string) {
	raw, present := entry[key]
	if !present {
		return
	}
	value, ok := raw.(string)
	if !ok {
		return
	}
	if value != current {
		update[key] = value
	}
}

func orEmptyMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
