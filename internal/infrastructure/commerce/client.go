package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	domainsync "github.com/erp/content-sync/internal/domain/sync"
)

// maxResponseSize caps commerce API response bodies (10MB)
const maxResponseSize = 10 * 1024 * 1024

// API is the shared HTTP plumbing for the commerce backend's admin
// surface. The per-entity services below wrap it with typed retrieval
// and update calls.
type API struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds the commerce backend endpoint and API token
type Config struct {
	BaseURL        string
	Token          string
	TimeoutSeconds int
}

// NewAPI creates the shared commerce API client
func NewAPI(cfg Config, logger *zap.Logger) *API {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &API{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// get retrieves a resource and decodes the named envelope field into out
func (a *API) get(ctx context.Context, path, envelope string, opts domainsync.RetrieveOptions, out any) error {
	query := url.Values{}
	if len(opts.Relations) > 0 {
		query.Set("expand", strings.Join(opts.Relations, ","))
	}
	if len(opts.Select) > 0 {
		query.Set("fields", strings.Join(opts.Select, ","))
	}

	target := a.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	body, err := a.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return fmt.Errorf("invalid response for %s: %w", path, err)
	}
	raw, ok := wrapper[envelope]
	if !ok {
		return fmt.Errorf("response for %s carried no %q", path, envelope)
	}
	return json.Unmarshal(raw, out)
}

// post writes a partial update to a resource
func (a *API) post(ctx context.Context, path string, fields map[string]any) error {
	encoded, err := json.Marshal(fields)
	if err != nil {
		return err
	}
	_, err = a.do(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(encoded))
	return err
}

func (a *API) do(ctx context.Context, method, target string, reqBody io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		a.logger.Warn("commerce api request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("commerce api %s %s returned status %d", method, target, resp.StatusCode)
	}
	return body, nil
}

// ---------------------------------------------------------------------------
// Per-entity services
// ---------------------------------------------------------------------------

// ProductAPI implements the product surface over the admin API
type ProductAPI struct{ api *API }

// NewProductAPI creates a new ProductAPI
func NewProductAPI(api *API) *ProductAPI { return &ProductAPI{api: api} }

// Retrieve fetches a product with relation expansion and field projection
func (s *ProductAPI) Retrieve(ctx context.Context, id string, opts domainsync.RetrieveOptions) (*domainsync.Product, error) {
	var product domainsync.Product
	if err := s.api.get(ctx, "/admin/products/"+id, "product", opts, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update writes a partial product update
func (s *ProductAPI) Update(ctx context.Context, id string, fields map[string]any) error {
	return s.api.post(ctx, "/admin/products/"+id, fields)
}

// ListIDsByCollection returns the ids of every product in a collection
func (s *ProductAPI) ListIDsByCollection(ctx context.Context, collectionID string) ([]string, error) {
	target := s.api.baseURL + "/admin/products?fields=id&collection_id=" + url.QueryEscape(collectionID)
	body, err := s.api.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var wrapper struct {
		Products []struct {
			ID string `json:"id"`
		} `json:"products"`
	}
	if err := json.Unmarshal(body, &wrapper); err != nil {
		return nil, fmt.Errorf("invalid product list response: %w", err)
	}

	ids := make([]string, 0, len(wrapper.Products))
	for _, p := range wrapper.Products {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// VariantAPI implements the product variant surface over the admin API
type VariantAPI struct{ api *API }

// NewVariantAPI creates a new VariantAPI
func NewVariantAPI(api *API) *VariantAPI { return &VariantAPI{api: api} }

// Retrieve fetches a variant with relation expansion
func (s *VariantAPI) Retrieve(ctx context.Context, id string, opts domainsync.RetrieveOptions) (*domainsync.ProductVariant, error) {
	var variant domainsync.ProductVariant
	if err := s.api.get(ctx, "/admin/product-variants/"+id, "variant", opts, &variant); err != nil {
		return nil, err
	}
	return &variant, nil
}

// Update writes a partial variant update
func (s *VariantAPI) Update(ctx context.Context, id string, fields map[string]any) error {
	return s.api.post(ctx, "/admin/product-variants/"+id, fields)
}

// RegionAPI implements the region surface over the admin API
type RegionAPI struct{ api *API }

// NewRegionAPI creates a new RegionAPI
func NewRegionAPI(api *API) *RegionAPI { return &RegionAPI{api: api} }

// Retrieve fetches a region with relation expansion and field projection
func (s *RegionAPI) Retrieve(ctx context.Context, id string, opts domainsync.RetrieveOptions) (*domainsync.Region, error) {
	var region domainsync.Region
	if err := s.api.get(ctx, "/admin/regions/"+id, "region", opts, &region); err != nil {
		return nil, err
	}
	return &region, nil
}

// Update writes a partial region update
func (s *RegionAPI) Update(ctx context.Context, id string, fields map[string]any) error {
	return s.api.post(ctx, "/admin/regions/"+id, fields)
}

// CategoryAPI implements the product category surface over the admin API
type CategoryAPI struct{ api *API }

// NewCategoryAPI creates a new CategoryAPI
func NewCategoryAPI(api *API) *CategoryAPI { return &CategoryAPI{api: api} }

// Retrieve fetches a category with its parent relation
func (s *CategoryAPI) Retrieve(ctx context.Context, id string, opts domainsync.RetrieveOptions) (*domainsync.ProductCategory, error) {
	var category domainsync.ProductCategory
	if err := s.api.get(ctx, "/admin/product-categories/"+id, "product_category", opts, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Update writes a partial category update
func (s *CategoryAPI) Update(ctx context.Context, id string, fields map[string]any) error {
	return s.api.post(ctx, "/admin/product-categories/"+id, fields)
}

// CollectionAPI implements the product collection surface over the admin API
type CollectionAPI struct{ api *API }

// NewCollectionAPI creates a new CollectionAPI
func NewCollectionAPI(api *API) *CollectionAPI { return &CollectionAPI{api: api} }

// Retrieve fetches a collection
func (s *CollectionAPI) Retrieve(ctx context.Context, id string, opts domainsync.RetrieveOptions) (*domainsync.ProductCollection, error) {
	var collection domainsync.ProductCollection
	if err := s.api.get(ctx, "/admin/collections/"+id, "collection", opts, &collection); err != nil {
		return nil, err
	}
	return &collection, nil
}

// Update writes a partial collection update
func (s *CollectionAPI) Update(ctx context.Context, id string, fields map[string]any) error {
	return s.api.post(ctx, "/admin/collections/"+id, fields)
}

// Interface conformance
var (
	_ domainsync.ProductService    = (*ProductAPI)(nil)
	_ domainsync.VariantService    = (*VariantAPI)(nil)
	_ domainsync.RegionService     = (*RegionAPI)(nil)
	_ domainsync.CategoryService   = (*CategoryAPI)(nil)
	_ domainsync.CollectionService = (*CollectionAPI)(nil)
)
