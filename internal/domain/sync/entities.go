package sync

import "github.com/shopspring/decimal"

// Commerce-side entity shapes, as returned by the commerce domain
// services with relation expansion. JSON tags match the commerce
// backend's wire format.

// Product is a commerce product with its expanded relations
type Product struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle"`
	Description   string         `json:"description"`
	Handle        string         `json:"handle"`
	IsGiftcard    bool           `json:"is_giftcard"`
	Discountable  bool           `json:"discountable"`
	Thumbnail     string         `json:"thumbnail"`
	Weight        int            `json:"weight"`
	Length        int            `json:"length"`
	Height        int            `json:"height"`
	Width         int            `json:"width"`
	HSCode        string         `json:"hs_code"`
	OriginCountry string         `json:"origin_country"`
	MIDCode       string         `json:"mid_code"`
	Material      string         `json:"material"`
	Metadata      map[string]any `json:"metadata"`

	Type       *ProductType       `json:"type"`
	Collection *ProductCollection `json:"collection"`
	Tags       []ProductTag       `json:"tags"`
	Options    []ProductOption    `json:"options"`
	Variants   []ProductVariant   `json:"variants"`
	Images     []Image            `json:"images"`
	Categories []ProductCategory  `json:"categories"`
}

// ProductType is a nested product type relation
type ProductType struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// ProductTag is a nested product tag relation
type ProductTag struct {
	ID    string `json:"id"`
	Value string `json:"value"`
}

// ProductOption is a product-level option definition (e.g. Size)
type ProductOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ProductVariant is a sellable variant of a product
type ProductVariant struct {
	ID            string               `json:"id"`
	ProductID     string               `json:"product_id"`
	Title         string               `json:"title"`
	SKU           string               `json:"sku"`
	Material      string               `json:"material"`
	Weight        int                  `json:"weight"`
	Length        int                  `json:"length"`
	Height        int                  `json:"height"`
	OriginCountry string               `json:"origin_country"`
	Metadata      map[string]any       `json:"metadata"`
	Prices        []MoneyAmount        `json:"prices"`
	Options       []VariantOptionValue `json:"options"`
}

// MoneyAmount is a price attached to a variant
type MoneyAmount struct {
	ID           string          `json:"id"`
	CurrencyCode string          `json:"currency_code"`
	Amount       decimal.Decimal `json:"amount"`
}

// VariantOptionValue is the value a variant takes for a product option
type VariantOptionValue struct {
	ID       string `json:"id"`
	OptionID string `json:"option_id"`
	Value    string `json:"value"`
}

// Image is an image asset attached to a product
type Image struct {
	ID       string         `json:"id"`
	URL      string         `json:"url"`
	Metadata map[string]any `json:"metadata"`
}

// Region is a commerce region with its expanded relations
type Region struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	CurrencyCode string         `json:"currency_code"`
	TaxRate      float64        `json:"tax_rate"`
	TaxCode      string         `json:"tax_code"`
	Metadata     map[string]any `json:"metadata"`

	Currency             *Currency  `json:"currency"`
	Countries            []Country  `json:"countries"`
	PaymentProviders     []Provider `json:"payment_providers"`
	FulfillmentProviders []Provider `json:"fulfillment_providers"`
}

// Currency is a nested currency relation
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Country is a country belonging to a region
type Country struct {
	ID          string `json:"id"`
	ISO2        string `json:"iso_2"`
	DisplayName string `json:"display_name"`
}

// Provider is a payment or fulfillment provider enabled for a region
type Provider struct {
	ID          string `json:"id"`
	IsInstalled bool   `json:"is_installed"`
}

// ProductCategory is a product category with its parent relation
type ProductCategory struct {
	ID             string           `json:"id"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Handle         string           `json:"handle"`
	ParentCategory *ProductCategory `json:"parent_category"`
}

// ProductCollection is a product collection
type ProductCollection struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Handle   string         `json:"handle"`
	Metadata map[string]any `json:"metadata"`
}
