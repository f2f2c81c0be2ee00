package sync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/content-sync/internal/domain/sync"
)

// ForwardSyncService propagates commerce-side changes into the CMS. Each
// operation retrieves the current entity from the commerce backend,
// flattens it into the CMS entry shape and writes it through the entry
// client, recording the remote id and an echo marker on success.
type ForwardSyncService struct {
	products    sync.ProductService
	variants    sync.VariantService
	regions     sync.RegionService
	categories  sync.CategoryService
	collections sync.CollectionService

	client   sync.EntryClient
	mappings sync.EntryMappingRepository
	echo     sync.EchoMarkerStore
	mapper   *sync.Mapper
	logger   *zap.Logger
}

// NewForwardSyncService creates a new ForwardSyncService
func NewForwardSyncService(
	products sync.ProductService,
	variants sync.VariantService,
	regions sync.RegionService,
	categories sync.CategoryService,
	collections sync.CollectionService,
	client sync.EntryClient,
	mappings sync.EntryMappingRepository,
	echo sync.EchoMarkerStore,
	mapper *sync.Mapper,
	logger *zap.Logger,
) *ForwardSyncService {
	return &ForwardSyncService{
		products:    products,
		variants:    variants,
		regions:     regions,
		categories:  categories,
		collections: collections,
		client:      client,
		mappings:    mappings,
		echo:        echo,
		mapper:      mapper,
		logger:      logger,
	}
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// CreateProduct pushes a freshly created commerce product into the CMS,
// cascading over its variants and image assets first so the product entry
// can reference them.
func (s *ForwardSyncService) CreateProduct(ctx context.Context, id string) error {
	product, err := s.retrieveProduct(ctx, id)
	if err != nil {
		return err
	}
	return s.pushProduct(ctx, product)
}

// UpdateProduct propagates a commerce product update. A nil field list
// means the caller does not know what changed and the update always
// propagates; otherwise irrelevant updates are dropped before any
// retrieval happens.
func (s *ForwardSyncService) UpdateProduct(ctx context.Context, id string, fields []string) error {
	if !sync.Relevant(sync.EntityTypeProduct, fields) {
		return nil
	}
	if s.echo.IsMarked(ctx, id, sync.SideCommerce) {
		s.logger.Debug("dropping echoed product update", zap.String("id", id))
		return nil
	}

	product, err := s.retrieveProduct(ctx, id)
	if err != nil {
		return err
	}
	return s.pushProduct(ctx, product)
}

// DeleteProduct removes the CMS entry for a deleted commerce product
func (s *ForwardSyncService) DeleteProduct(ctx context.Context, id string) error {
	return s.deleteEntry(ctx, sync.EntityTypeProduct, id)
}

func (s *ForwardSyncService) retrieveProduct(ctx context.Context, id string) (*sync.Product, error) {
	schema, _ := sync.SchemaFor(sync.EntityTypeProduct)
	product, err := s.products.Retrieve(ctx, id, sync.RetrieveOptions{
		Relations: schema.Relations,
		Select:    schema.Select,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: product %s: %v", sync.ErrDomainRetrievalFailed, id, err)
	}
	return product, nil
}

func (s *ForwardSyncService) pushProduct(ctx context.Context, product *sync.Product) error {
	for i := range product.Variants {
		variant := product.Variants[i]
		if variant.ProductID == "" {
			variant.ProductID = product.ID
		}
		if err := s.pushEntry(ctx, sync.EntityTypeProductVariant, variant.ID, s.mapper.VariantPayload(&variant)); err != nil {
			return err
		}
	}

	assets := s.createImageAssets(ctx, product)
	return s.pushEntry(ctx, sync.EntityTypeProduct, product.ID, s.mapper.ProductPayload(product, assets))
}

// createImageAssets pushes one CMS image entry per gallery image. The
// thumbnail travels as a scalar field on the product itself, so an image
// whose url matches the thumbnail is skipped. Asset failures degrade the
// gallery but never abort the product sync.
func (s *ForwardSyncService) createImageAssets(ctx context.Context, product *sync.Product) []sync.AssetRef {
	var assets []sync.AssetRef
	for _, img := range product.Images {
		if img.URL == product.Thumbnail {
			continue
		}
		if err := s.pushEntry(ctx, sync.EntityTypeImage, img.ID, s.mapper.ImagePayload(img)); err != nil {
			s.logger.Warn("image asset sync failed",
				zap.String("product_id", product.ID),
				zap.String("image_id", img.ID),
				zap.Error(err))
			continue
		}
		remoteID, err := s.mappings.RemoteID(ctx, sync.EntityTypeImage, img.ID)
		if err != nil {
			s.logger.Warn("image asset mapping lookup failed",
				zap.String("image_id", img.ID), zap.Error(err))
			continue
		}
		assets = append(assets, sync.AssetRef{Image: remoteID})
	}
	return assets
}

// ---------------------------------------------------------------------------
// Product variants
// ---------------------------------------------------------------------------

// CreateVariant pushes a freshly created commerce variant into the CMS
func (s *ForwardSyncService) CreateVariant(ctx context.Context, id string) error {
	variant, err := s.retrieveVariant(ctx, id)
	if err != nil {
		return err
	}
	return s.pushEntry(ctx, sync.EntityTypeProductVariant, variant.ID, s.mapper.VariantPayload(variant))
}

// UpdateVariant propagates a commerce variant update
func (s *ForwardSyncService) UpdateVariant(ctx context.Context, id string, fields []string) error {
	if !sync.Relevant(sync.EntityTypeProductVariant, fields) {
		return nil
	}
	if s.echo.IsMarked(ctx, id, sync.SideCommerce) {
		s.logger.Debug("dropping echoed variant update", zap.String("id", id))
		return nil
	}

	variant, err := s.retrieveVariant(ctx, id)
	if err != nil {
		return err
	}
	return s.pushEntry(ctx, sync.EntityTypeProductVariant, variant.ID, s.mapper.VariantPayload(variant))
}

// DeleteVariant removes the CMS entry for a deleted commerce variant
func (s *ForwardSyncService) DeleteVariant(ctx context.Context, id string) error {
	return s.deleteEntry(ctx, sync.EntityTypeProductVariant, id)
}

func (s *ForwardSyncService) retrieveVariant(ctx context.Context, id string) (*sync.ProductVariant, error) {
	schema, _ := sync.SchemaFor(sync.EntityTypeProductVariant)
	variant, err := s.variants.Retrieve(ctx, id, sync.RetrieveOptions{Relations: schema.Relations})
	if err != nil {
		return nil, fmt.Errorf("%w: product variant %s: %v", sync.ErrDomainRetrievalFailed, id, err)
	}
	return variant, nil
}

// ---------------------------------------------------------------------------
// Regions
// ---------------------------------------------------------------------------

// CreateRegion pushes a freshly created commerce region into the CMS
func (s *ForwardSyncService) CreateRegion(ctx context.Context, id string) error {
	region, err := s.retrieveRegion(ctx, id)
	if err != nil {
		return err
	}
	return s.pushEntry(ctx, sync.EntityTypeRegion, region.ID, s.mapper.RegionPayload(region))
}

// UpdateRegion propagates a commerce region update
func (s *ForwardSyncService) UpdateRegion(ctx context.Context, id string, fields []string) error {
	if !sync.Relevant(sync.EntityTypeRegion, fields) {
		return nil
	}
	if s.echo.IsMarked(ctx, id, sync.SideCommerce) {
		s.logger.Debug("dropping echoed region update", zap.String("id", id))
		return nil
	}

	region, err := s.retrieveRegion(ctx, id)
	if err != nil {
		return err
	}
	return s.pushEntry(ctx, sync.EntityTypeRegion, region.ID, s.mapper.RegionPayload(region))
}

// DeleteRegion removes the CMS entry for a deleted commerce region
func (s *ForwardSyncService) DeleteRegion(ctx context.Context, id string) error {
	return s.deleteEntry(ctx, sync.EntityTypeRegion, id)
}

func (s *ForwardSyncService) retrieveRegion(ctx context.Context, id string) (*sync.Region, error) {
	schema, _ := sync.SchemaFor(sync.EntityTypeRegion)
	region, err := s.regions.Retrieve(ctx, id, sync.RetrieveOptions{
		Relations: schema.Relations,
		Select:    schema.Select,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: region %s: %v", sync.ErrDomainRetrievalFailed, id, err)
	}
	return region, nil
}

// ---------------------------------------------------------------------------
// Product categories
// ---------------------------------------------------------------------------

// CreateCategory pushes a freshly created product category into the CMS
func (s *ForwardSyncService) CreateCategory(ctx context.Context, id string) error {
	category, err := s.retrieveCategory(ctx, id)
	if err != nil {
		return err
	}
	return s.pushEntry(ctx, sync.EntityTypeProductCategory, category.ID, s.mapper.CategoryPayload(category))
}

// UpdateCategory propagates a product category update
func (s *ForwardSyncService) UpdateCategory(ctx context.Context, id string, fields []string) error {
	if !sync.Relevant(sync.EntityTypeProductCategory, fields) {
		return nil
	}
	if s.echo.IsMarked(ctx, id, sync.SideCommerce) {
		s.logger.Debug("dropping echoed category update", zap.String("id", id))
		return nil
	}

	category, err := s.retrieveCategory(ctx, id)
	if err != nil {
		return err
	}
	return s.pushEntry(ctx, sync.EntityTypeProductCategory, category.ID, s.mapper.CategoryPayload(category))
}

// DeleteCategory removes the CMS entry for a deleted product category
func (s *ForwardSyncService) DeleteCategory(ctx context.Context, id string) error {
	return s.deleteEntry(ctx, sync.EntityTypeProductCategory, id)
}

func (s *ForwardSyncService) retrieveCategory(ctx context.Context, id string) (*sync.ProductCategory, error) {
	schema, _ := sync.SchemaFor(sync.EntityTypeProductCategory)
	category, err := s.categories.Retrieve(ctx, id, sync.RetrieveOptions{
		Relations: schema.Relations,
		Select:    schema.Select,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: product category %s: %v", sync.ErrDomainRetrievalFailed, id, err)
	}
	return category, nil
}

// ---------------------------------------------------------------------------
// Product collections
// ---------------------------------------------------------------------------

// CreateCollection pushes a freshly created product collection into the CMS
func (s *ForwardSyncService) CreateCollection(ctx context.Context, id string) error {
	collection, err := s.retrieveCollection(ctx, id)
	if err != nil {
		return err
	}
	return s.pushEntry(ctx, sync.EntityTypeProductCollection, collection.ID, s.mapper.CollectionPayload(collection))
}

// UpdateCollection propagates a product collection update
func (s *ForwardSyncService) UpdateCollection(ctx context.Context, id string, fields []string) error {
	if !sync.Relevant(sync.EntityTypeProductCollection, fields) {
		return nil
	}
	if s.echo.IsMarked(ctx, id, sync.SideCommerce) {
		s.logger.Debug("dropping echoed collection update", zap.String("id", id))
		return nil
	}

	collection, err := s.retrieveCollection(ctx, id)
	if err != nil {
		return err
	}
	return s.pushEntry(ctx, sync.EntityTypeProductCollection, collection.ID, s.mapper.CollectionPayload(collection))
}

// DeleteCollection removes the CMS entry for a deleted product collection
func (s *ForwardSyncService) DeleteCollection(ctx context.Context, id string) error {
	return s.deleteEntry(ctx, sync.EntityTypeProductCollection, id)
}

// UpdateProductsWithinCollection re-syncs every product belonging to a
// collection. Collection membership lives on the product entries, so a
// collection-level change fans out to its members.
func (s *ForwardSyncService) UpdateProductsWithinCollection(ctx context.Context, collectionID string) error {
	ids, err := s.products.ListIDsByCollection(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("%w: products of collection %s: %v", sync.ErrDomainRetrievalFailed, collectionID, err)
	}

	var failed int
	for _, id := range ids {
		if err := s.UpdateProduct(ctx, id, nil); err != nil {
			failed++
			s.logger.Warn("product re-sync within collection failed",
				zap.String("collection_id", collectionID),
				zap.String("product_id", id),
				zap.Error(err))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d products in collection %s", sync.ErrRemoteWriteFailed, failed, len(ids), collectionID)
	}
	return nil
}

func (s *ForwardSyncService) retrieveCollection(ctx context.Context, id string) (*sync.ProductCollection, error) {
	schema, _ := sync.SchemaFor(sync.EntityTypeProductCollection)
	collection, err := s.collections.Retrieve(ctx, id, sync.RetrieveOptions{Select: schema.Select})
	if err != nil {
		return nil, fmt.Errorf("%w: product collection %s: %v", sync.ErrDomainRetrievalFailed, id, err)
	}
	return collection, nil
}

// ---------------------------------------------------------------------------
// Shared push/delete plumbing
// ---------------------------------------------------------------------------

// pushEntry writes the payload to the CMS, creating or updating depending
// on whether a remote id is already recorded. An update hitting a vanished
// entry falls back to create so the two sides re-converge. On success the
// entity is echo-marked on the CMS side.
func (s *ForwardSyncService) pushEntry(ctx context.Context, t sync.EntityType, commerceID string, payload sync.EntryPayload) error {
	if !s.client.TypeExists(ctx, t) {
		s.logger.Debug("cms does not expose content type, skipping",
			zap.String("entity_type", t.String()), zap.String("id", commerceID))
		return nil
	}

	remoteID, err := s.mappings.RemoteID(ctx, t, commerceID)
	switch {
	case err == nil:
		updateErr := s.client.Update(ctx, t, remoteID, payload)
		if updateErr == nil {
			s.echo.Mark(ctx, commerceID, sync.SideCMS)
			return nil
		}
		if !errors.Is(updateErr, sync.ErrEntryNotFound) {
			return updateErr
		}
		s.logger.Info("remote entry vanished, re-creating",
			zap.String("entity_type", t.String()), zap.String("id", commerceID))
	case errors.Is(err, sync.ErrMappingNotFound):
		// fall through to create
	default:
		return err
	}

	newRemoteID, err := s.client.Create(ctx, t, payload)
	if err != nil {
		return err
	}
	if err := s.mappings.Save(ctx, t, commerceID, newRemoteID); err != nil {
		return err
	}
	s.echo.Mark(ctx, commerceID, sync.SideCMS)
	return nil
}

// deleteEntry removes the CMS entry and its mapping for a commerce-side
// delete. An unknown mapping means the entity was never synced and the
// delete is a no-op.
func (s *ForwardSyncService) deleteEntry(ctx context.Context, t sync.EntityType, commerceID string) error {
	remoteID, err := s.mappings.RemoteID(ctx, t, commerceID)
	if errors.Is(err, sync.ErrMappingNotFound) {
		s.logger.Debug("delete for unsynced entity, nothing to do",
			zap.String("entity_type", t.String()), zap.String("id", commerceID))
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.client.Delete(ctx, t, remoteID); err != nil {
		return err
	}
	if err := s.mappings.Delete(ctx, t, commerceID); err != nil {
		return err
	}
	s.echo.Mark(ctx, commerceID, sync.SideCMS)
	return nil
}
