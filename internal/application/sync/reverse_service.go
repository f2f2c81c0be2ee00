package sync

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/erp/content-sync/internal/domain/sync"
)

// ReverseSyncService applies CMS-side edits back onto the commerce
// backend. Only the narrow per-type reverse field set is ever written,
// and only when the incoming entry actually differs from the current
// commerce state.
type ReverseSyncService struct {
	products    sync.ProductService
	variants    sync.VariantService
	regions     sync.RegionService
	categories  sync.CategoryService
	collections sync.CollectionService

	echo   sync.EchoMarkerStore
	logger *zap.Logger
}

// NewReverseSyncService creates a new ReverseSyncService
func NewReverseSyncService(
	products sync.ProductService,
	variants sync.VariantService,
	regions sync.RegionService,
	categories sync.CategoryService,
	collections sync.CollectionService,
	echo sync.EchoMarkerStore,
	logger *zap.Logger,
) *ReverseSyncService {
	return &ReverseSyncService{
		products:    products,
		variants:    variants,
		regions:     regions,
		categories:  categories,
		collections: collections,
		echo:        echo,
		logger:      logger,
	}
}

// Apply routes a CMS entry to the per-type handler
func (s *ReverseSyncService) Apply(ctx context.Context, t sync.EntityType, entry map[string]any) error {
	switch t {
	case sync.EntityTypeProduct:
		return s.ApplyProductEntry(ctx, entry)
	case sync.EntityTypeProductVariant:
		return s.ApplyVariantEntry(ctx, entry)
	case sync.EntityTypeRegion:
		return s.ApplyRegionEntry(ctx, entry)
	case sync.EntityTypeProductCategory:
		return s.ApplyCategoryEntry(ctx, entry)
	case sync.EntityTypeProductCollection:
		return s.ApplyCollectionEntry(ctx, entry)
	default:
		return fmt.Errorf("%w: %s", sync.ErrUnknownEntityType, t)
	}
}

// ApplyProductEntry writes a CMS product edit back to the commerce product
func (s *ReverseSyncService) ApplyProductEntry(ctx context.Context, entry map[string]any) error {
	commerceID, skip := s.admit(ctx, sync.EntityTypeProduct, entry)
	if skip {
		return nil
	}

	schema, _ := sync.SchemaFor(sync.EntityTypeProduct)
	product, err := s.products.Retrieve(ctx, commerceID, sync.RetrieveOptions{Select: append([]string{"id"}, schema.ReverseFields...)})
	if err != nil {
		return fmt.Errorf("%w: product %s: %v", sync.ErrDomainRetrievalFailed, commerceID, err)
	}

	update := sync.ProductLocalUpdate(entry, product)
	if len(update) == 0 {
		return nil
	}
	if err := s.products.Update(ctx, commerceID, update); err != nil {
		return err
	}
	s.echo.Mark(ctx, commerceID, sync.SideCommerce)
	return nil
}

// ApplyVariantEntry writes a CMS variant edit back to the commerce variant
func (s *ReverseSyncService) ApplyVariantEntry(ctx context.Context, entry map[string]any) error {
	commerceID, skip := s.admit(ctx, sync.EntityTypeProductVariant, entry)
	if skip {
		return nil
	}

	variant, err := s.variants.Retrieve(ctx, commerceID, sync.RetrieveOptions{})
	if err != nil {
		return fmt.Errorf("%w: product variant %s: %v", sync.ErrDomainRetrievalFailed, commerceID, err)
	}

	update := sync.VariantLocalUpdate(entry, variant)
	if len(update) == 0 {
		return nil
	}
	if err := s.variants.Update(ctx, commerceID, update); err != nil {
		return err
	}
	s.echo.Mark(ctx, commerceID, sync.SideCommerce)
	return nil
}

// ApplyRegionEntry writes a CMS region edit back to the commerce region
func (s *ReverseSyncService) ApplyRegionEntry(ctx context.Context, entry map[string]any) error {
	commerceID, skip := s.admit(ctx, sync.EntityTypeRegion, entry)
	if skip {
		return nil
	}

	region, err := s.regions.Retrieve(ctx, commerceID, sync.RetrieveOptions{Select: []string{"id", "name"}})
	if err != nil {
		return fmt.Errorf("%w: region %s: %v", sync.ErrDomainRetrievalFailed, commerceID, err)
	}

	update := sync.RegionLocalUpdate(entry, region)
	if len(update) == 0 {
		return nil
	}
	if err := s.regions.Update(ctx, commerceID, update); err != nil {
		return err
	}
	s.echo.Mark(ctx, commerceID, sync.SideCommerce)
	return nil
}

// ApplyCategoryEntry writes a CMS category edit back to the commerce category
func (s *ReverseSyncService) ApplyCategoryEntry(ctx context.Context, entry map[string]any) error {
	commerceID, skip := s.admit(ctx, sync.EntityTypeProductCategory, entry)
	if skip {
		return nil
	}

	category, err := s.categories.Retrieve(ctx, commerceID, sync.RetrieveOptions{Select: []string{"id", "name", "description", "handle"}})
	if err != nil {
		return fmt.Errorf("%w: product category %s: %v", sync.ErrDomainRetrievalFailed, commerceID, err)
	}

	update := sync.CategoryLocalUpdate(entry, category)
	if len(update) == 0 {
		return nil
	}
	if err := s.categories.Update(ctx, commerceID, update); err != nil {
		return err
	}
	s.echo.Mark(ctx, commerceID, sync.SideCommerce)
	return nil
}

// ApplyCollectionEntry writes a CMS collection edit back to the commerce collection
func (s *ReverseSyncService) ApplyCollectionEntry(ctx context.Context, entry map[string]any) error {
	commerceID, skip := s.admit(ctx, sync.EntityTypeProductCollection, entry)
	if skip {
		return nil
	}

	collection, err := s.collections.Retrieve(ctx, commerceID, sync.RetrieveOptions{Select: []string{"id", "title", "handle"}})
	if err != nil {
		return fmt.Errorf("%w: product collection %s: %v", sync.ErrDomainRetrievalFailed, commerceID, err)
	}

	update := sync.CollectionLocalUpdate(entry, collection)
	if len(update) == 0 {
		return nil
	}
	if err := s.collections.Update(ctx, commerceID, update); err != nil {
		return err
	}
	s.echo.Mark(ctx, commerceID, sync.SideCommerce)
	return nil
}

// admit extracts the commerce id from the entry and decides whether the
// edit should be applied at all. An entry without a commerce id was never
// bridged from the commerce side and is ignored, as is an entry whose
// change is just the echo of a forward sync.
func (s *ReverseSyncService) admit(ctx context.Context, t sync.EntityType, entry map[string]any) (string, bool) {
	commerceID, _ := entry["commerce_id"].(string)
	if commerceID == "" {
		s.logger.Debug("cms entry without commerce id, ignoring",
			zap.String("entity_type", t.String()))
		return "", true
	}
	if s.echo.IsMarked(ctx, commerceID, sync.SideCMS) {
		s.logger.Debug("dropping echoed cms edit",
			zap.String("entity_type", t.String()), zap.String("id", commerceID))
		return "", true
	}
	return commerceID, false
}
