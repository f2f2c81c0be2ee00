package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/erp/content-sync/internal/domain/sync"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type MockEchoStore struct {
	mock.Mock
}

func (m *MockEchoStore) Mark(ctx context.Context, entityID string, side sync.Side) {
	m.Called(ctx, entityID, side)
}

func (m *MockEchoStore) IsMarked(ctx context.Context, entityID string, side sync.Side) bool {
	args := m.Called(ctx, entityID, side)
	return args.Bool(0)
}

type MockEntryClient struct {
	mock.Mock
}

func (m *MockEntryClient) TypeExists(ctx context.Context, t sync.EntityType) bool {
	args := m.Called(ctx, t)
	return args.Bool(0)
}

func (m *MockEntryClient) Create(ctx context.Context, t sync.EntityType, payload sync.EntryPayload) (string, error) {
	args := m.Called(ctx, t, payload)
	return args.String(0), args.Error(1)
}

func (m *MockEntryClient) Update(ctx context.Context, t sync.EntityType, remoteID string, payload sync.EntryPayload) error {
	args := m.Called(ctx, t, remoteID, payload)
	return args.Error(0)
}

func (m *MockEntryClient) Delete(ctx context.Context, t sync.EntityType, remoteID string) error {
	args := m.Called(ctx, t, remoteID)
	return args.Error(0)
}

func (m *MockEntryClient) Exists(ctx context.Context, t sync.EntityType, remoteID string) (bool, error) {
	args := m.Called(ctx, t, remoteID)
	return args.Bool(0), args.Error(1)
}

type MockMappingRepo struct {
	mock.Mock
}

func (m *MockMappingRepo) RemoteID(ctx context.Context, t sync.EntityType, commerceID string) (string, error) {
	args := m.Called(ctx, t, commerceID)
	return args.String(0), args.Error(1)
}

func (m *MockMappingRepo) Save(ctx context.Context, t sync.EntityType, commerceID, remoteID string) error {
	args := m.Called(ctx, t, commerceID, remoteID)
	return args.Error(0)
}

func (m *MockMappingRepo) Delete(ctx context.Context, t sync.EntityType, commerceID string) error {
	args := m.Called(ctx, t, commerceID)
	return args.Error(0)
}

type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Retrieve(ctx context.Context, id string, opts sync.RetrieveOptions) (*sync.Product, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockProductService) ListIDsByCollection(ctx context.Context, collectionID string) ([]string, error) {
	args := m.Called(ctx, collectionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockVariantService struct {
	mock.Mock
}

func (m *MockVariantService) Retrieve(ctx context.Context, id string, opts sync.RetrieveOptions) (*sync.ProductVariant, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.ProductVariant), args.Error(1)
}

func (m *MockVariantService) Update(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

type MockRegionService struct {
	mock.Mock
}

func (m *MockRegionService) Retrieve(ctx context.Context, id string, opts sync.RetrieveOptions) (*sync.Region, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.Region), args.Error(1)
}

func (m *MockRegionService) Update(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) Retrieve(ctx context.Context, id string, opts sync.RetrieveOptions) (*sync.ProductCategory, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.ProductCategory), args.Error(1)
}

func (m *MockCategoryService) Update(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

type MockCollectionService struct {
	mock.Mock
}

func (m *MockCollectionService) Retrieve(ctx context.Context, id string, opts sync.RetrieveOptions) (*sync.ProductCollection, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sync.ProductCollection), args.Error(1)
}

func (m *MockCollectionService) Update(ctx context.Context, id string, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

// Interface conformance for the mocks
var (
	_ sync.EchoMarkerStore        = (*MockEchoStore)(nil)
	_ sync.EntryClient            = (*MockEntryClient)(nil)
	_ sync.EntryMappingRepository = (*MockMappingRepo)(nil)
	_ sync.ProductService         = (*MockProductService)(nil)
	_ sync.VariantService         = (*MockVariantService)(nil)
	_ sync.RegionService          = (*MockRegionService)(nil)
	_ sync.CategoryService        = (*MockCategoryService)(nil)
	_ sync.CollectionService      = (*MockCollectionService)(nil)
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

type forwardFixture struct {
	products    *MockProductService
	variants    *MockVariantService
	regions     *MockRegionService
	categories  *MockCategoryService
	collections *MockCollectionService
	client      *MockEntryClient
	mappings    *MockMappingRepo
	echo        *MockEchoStore
	service     *ForwardSyncService
}

func newForwardFixture() *forwardFixture {
	f := &forwardFixture{
		products:    new(MockProductService),
		variants:    new(MockVariantService),
		regions:     new(MockRegionService),
		categories:  new(MockCategoryService),
		collections: new(MockCollectionService),
		client:      new(MockEntryClient),
		mappings:    new(MockMappingRepo),
		echo:        new(MockEchoStore),
	}
	f.service = NewForwardSyncService(
		f.products, f.variants, f.regions, f.categories, f.collections,
		f.client, f.mappings, f.echo, sync.NewMapper(nil), zap.NewNop())
	return f
}

func (f *forwardFixture) assertExpectations(t *testing.T) {
	f.products.AssertExpectations(t)
	f.variants.AssertExpectations(t)
	f.regions.AssertExpectations(t)
	f.categories.AssertExpectations(t)
	f.collections.AssertExpectations(t)
	f.client.AssertExpectations(t)
	f.mappings.AssertExpectations(t)
	f.echo.AssertExpectations(t)
}

// ---------------------------------------------------------------------------
// Region tests (simplest path through pushEntry)
// ---------------------------------------------------------------------------

func TestCreateRegion_CreatesEntryAndMapping(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()
	region := &sync.Region{ID: "reg_1", Name: "Europe", CurrencyCode: "eur"}

	f.regions.On("Retrieve", ctx, "reg_1", mock.Anything).Return(region, nil)
	f.client.On("TypeExists", ctx, sync.EntityTypeRegion).Return(true)
	f.mappings.On("RemoteID", ctx, sync.EntityTypeRegion, "reg_1").Return("", sync.ErrMappingNotFound)
	f.client.On("Create", ctx, sync.EntityTypeRegion, mock.Anything).Return("42", nil)
	f.mappings.On("Save", ctx, sync.EntityTypeRegion, "reg_1", "42").Return(nil)
	f.echo.On("Mark", ctx, "reg_1", sync.SideCMS).Return()

	err := f.service.CreateRegion(ctx, "reg_1")

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestUpdateRegion_ExistingMappingUpdates(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()
	region := &sync.Region{ID: "reg_1", Name: "Europe"}

	f.echo.On("IsMarked", ctx, "reg_1", sync.SideCommerce).Return(false)
	f.regions.On("Retrieve", ctx, "reg_1", mock.Anything).Return(region, nil)
	f.client.On("TypeExists", ctx, sync.EntityTypeRegion).Return(true)
	f.mappings.On("RemoteID", ctx, sync.EntityTypeRegion, "reg_1").Return("42", nil)
	f.client.On("Update", ctx, sync.EntityTypeRegion, "42", mock.Anything).Return(nil)
	f.echo.On("Mark", ctx, "reg_1", sync.SideCMS).Return()

	err := f.service.UpdateRegion(ctx, "reg_1", nil)

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestUpdateRegion_EchoMarkedSkips(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()

	f.echo.On("IsMarked", ctx, "reg_1", sync.SideCommerce).Return(true)

	err := f.service.UpdateRegion(ctx, "reg_1", nil)

	assert.NoError(t, err)
	f.regions.AssertNotCalled(t, "Retrieve", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestUpdateRegion_IrrelevantFieldsSkip(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()

	err := f.service.UpdateRegion(ctx, "reg_1", []string{"tax_provider_id"})

	assert.NoError(t, err)
	f.echo.AssertNotCalled(t, "IsMarked", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestUpdateRegion_VanishedEntryFallsBackToCreate(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()
	region := &sync.Region{ID: "reg_1", Name: "Europe"}

	f.echo.On("IsMarked", ctx, "reg_1", sync.SideCommerce).Return(false)
	f.regions.On("Retrieve", ctx, "reg_1", mock.Anything).Return(region, nil)
	f.client.On("TypeExists", ctx, sync.EntityTypeRegion).Return(true)
	f.mappings.On("RemoteID", ctx, sync.EntityTypeRegion, "reg_1").Return("42", nil)
	f.client.On("Update", ctx, sync.EntityTypeRegion, "42", mock.Anything).Return(sync.ErrEntryNotFound)
	f.client.On("Create", ctx, sync.EntityTypeRegion, mock.Anything).Return("77", nil)
	f.mappings.On("Save", ctx, sync.EntityTypeRegion, "reg_1", "77").Return(nil)
	f.echo.On("Mark", ctx, "reg_1", sync.SideCMS).Return()

	err := f.service.UpdateRegion(ctx, "reg_1", nil)

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestCreateRegion_MissingContentTypeSkips(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()
	region := &sync.Region{ID: "reg_1", Name: "Europe"}

	f.regions.On("Retrieve", ctx, "reg_1", mock.Anything).Return(region, nil)
	f.client.On("TypeExists", ctx, sync.EntityTypeRegion).Return(false)

	err := f.service.CreateRegion(ctx, "reg_1")

	assert.NoError(t, err)
	f.client.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestCreateRegion_RetrievalFailureWrapped(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()

	f.regions.On("Retrieve", ctx, "reg_1", mock.Anything).Return(nil, errors.New("boom"))

	err := f.service.CreateRegion(ctx, "reg_1")

	assert.ErrorIs(t, err, sync.ErrDomainRetrievalFailed)
	f.assertExpectations(t)
}

// ---------------------------------------------------------------------------
// Product tests (cascade)
// ---------------------------------------------------------------------------

func TestCreateProduct_CascadesVariantsAndImages(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()
	product := &sync.Product{
		ID:        "prod_1",
		Title:     "Shirt",
		Thumbnail: "https://img/thumb.png",
		Variants:  []sync.ProductVariant{{ID: "variant_1", Title: "S"}},
		Images: []sync.Image{
			{ID: "img_thumb", URL: "https://img/thumb.png"},
			{ID: "img_1", URL: "https://img/1.png"},
		},
	}

	f.products.On("Retrieve", ctx, "prod_1", mock.Anything).Return(product, nil)

	// variant cascade
	f.client.On("TypeExists", ctx, sync.EntityTypeProductVariant).Return(true)
	f.mappings.On("RemoteID", ctx, sync.EntityTypeProductVariant, "variant_1").Return("", sync.ErrMappingNotFound)
	f.client.On("Create", ctx, sync.EntityTypeProductVariant, mock.Anything).Return("101", nil)
	f.mappings.On("Save", ctx, sync.EntityTypeProductVariant, "variant_1", "101").Return(nil)
	f.echo.On("Mark", ctx, "variant_1", sync.SideCMS).Return()

	// gallery image only; the thumbnail image is skipped
	f.client.On("TypeExists", ctx, sync.EntityTypeImage).Return(true)
	f.mappings.On("RemoteID", ctx, sync.EntityTypeImage, "img_1").Return("", sync.ErrMappingNotFound).Once()
	f.client.On("Create", ctx, sync.EntityTypeImage, mock.Anything).Return("201", nil)
	f.mappings.On("Save", ctx, sync.EntityTypeImage, "img_1", "201").Return(nil)
	f.echo.On("Mark", ctx, "img_1", sync.SideCMS).Return()
	f.mappings.On("RemoteID", ctx, sync.EntityTypeImage, "img_1").Return("201", nil)

	// the product itself
	f.client.On("TypeExists", ctx, sync.EntityTypeProduct).Return(true)
	f.mappings.On("RemoteID", ctx, sync.EntityTypeProduct, "prod_1").Return("", sync.ErrMappingNotFound)
	f.client.On("Create", ctx, sync.EntityTypeProduct, mock.MatchedBy(func(p sync.EntryPayload) bool {
		assets, ok := p["images"].([]sync.AssetRef)
		return ok && len(assets) == 1 && assets[0].Image == "201"
	})).Return("301", nil)
	f.mappings.On("Save", ctx, sync.EntityTypeProduct, "prod_1", "301").Return(nil)
	f.echo.On("Mark", ctx, "prod_1", sync.SideCMS).Return()

	err := f.service.CreateProduct(ctx, "prod_1")

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestDeleteProduct_RemovesEntryAndMapping(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()

	f.mappings.On("RemoteID", ctx, sync.EntityTypeProduct, "prod_1").Return("301", nil)
	f.client.On("Delete", ctx, sync.EntityTypeProduct, "301").Return(nil)
	f.mappings.On("Delete", ctx, sync.EntityTypeProduct, "prod_1").Return(nil)
	f.echo.On("Mark", ctx, "prod_1", sync.SideCMS).Return()

	err := f.service.DeleteProduct(ctx, "prod_1")

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestDeleteProduct_UnknownMappingIsNoop(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()

	f.mappings.On("RemoteID", ctx, sync.EntityTypeProduct, "prod_1").Return("", sync.ErrMappingNotFound)

	err := f.service.DeleteProduct(ctx, "prod_1")

	assert.NoError(t, err)
	f.client.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

// ---------------------------------------------------------------------------
// Collection fan-out
// ---------------------------------------------------------------------------

func TestUpdateProductsWithinCollection_FansOut(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()
	product := &sync.Product{ID: "prod_1", Title: "Shirt"}

	f.products.On("ListIDsByCollection", ctx, "pcol_1").Return([]string{"prod_1"}, nil)
	f.echo.On("IsMarked", ctx, "prod_1", sync.SideCommerce).Return(false)
	f.products.On("Retrieve", ctx, "prod_1", mock.Anything).Return(product, nil)
	f.client.On("TypeExists", ctx, sync.EntityTypeProduct).Return(true)
	f.mappings.On("RemoteID", ctx, sync.EntityTypeProduct, "prod_1").Return("301", nil)
	f.client.On("Update", ctx, sync.EntityTypeProduct, "301", mock.Anything).Return(nil)
	f.echo.On("Mark", ctx, "prod_1", sync.SideCMS).Return()

	err := f.service.UpdateProductsWithinCollection(ctx, "pcol_1")

	assert.NoError(t, err)
	f.assertExpectations(t)
}

func TestUpdateProductsWithinCollection_ReportsFailures(t *testing.T) {
	f := newForwardFixture()
	ctx := context.Background()

	f.products.On("ListIDsByCollection", ctx, "pcol_1").Return([]string{"prod_1"}, nil)
	f.echo.On("IsMarked", ctx, "prod_1", sync.SideCommerce).Return(false)
	f.products.On("Retrieve", ctx, "prod_1", mock.Anything).Return(nil, errors.New("down"))

	err := f.service.UpdateProductsWithinCollection(ctx, "pcol_1")

	assert.ErrorIs(t, err, sync.ErrRemoteWriteFailed)
	f.assertExpectations(t)
}
