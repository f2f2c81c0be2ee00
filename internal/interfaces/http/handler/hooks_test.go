package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	appsync "github.com/erp/content-sync/internal/application/sync"
	"github.com/erp/content-sync/internal/domain/shared"
	domainsync "github.com/erp/content-sync/internal/domain/sync"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockReverseSyncer struct {
	mock.Mock
}

func (m *MockReverseSyncer) Apply(ctx context.Context, t domainsync.EntityType, entry map[string]any) error {
	args := m.Called(ctx, t, entry)
	return args.Error(0)
}

func newHooksTestRouter(bus shared.EventPublisher, reverse ReverseSyncer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewHooksHandler(bus, reverse, zap.NewNop()).RegisterRoutes(engine.Group("/"))
	return engine
}

func postJSON(engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	encoded, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestCommerceHook_PublishesChangeEvent(t *testing.T) {
	bus := new(MockPublisher)
	reverse := new(MockReverseSyncer)
	engine := newHooksTestRouter(bus, reverse)

	bus.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		if len(events) != 1 {
			return false
		}
		change, ok := events[0].(*appsync.ChangeEvent)
		return ok &&
			change.EventType() == "product.updated" &&
			change.AggregateID() == "prod_1" &&
			len(change.Fields) == 1 && change.Fields[0] == "title"
	})).Return(nil)

	rec := postJSON(engine, "/hooks/commerce", map[string]any{
		"entityType": "product",
		"event":      "updated",
		"id":         "prod_1",
		"fields":     []string{"title"},
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	bus.AssertExpectations(t)
}

func TestCommerceHook_UnknownEntityType(t *testing.T) {
	bus := new(MockPublisher)
	engine := newHooksTestRouter(bus, new(MockReverseSyncer))

	rec := postJSON(engine, "/hooks/commerce", map[string]any{
		"entityType": "order",
		"event":      "created",
		"id":         "ord_1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestCommerceHook_UnknownEventAction(t *testing.T) {
	engine := newHooksTestRouter(new(MockPublisher), new(MockReverseSyncer))

	rec := postJSON(engine, "/hooks/commerce", map[string]any{
		"entityType": "product",
		"event":      "archived",
		"id":         "prod_1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommerceHook_MissingFieldsRejected(t *testing.T) {
	engine := newHooksTestRouter(new(MockPublisher), new(MockReverseSyncer))

	rec := postJSON(engine, "/hooks/commerce", map[string]any{"entityType": "product"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCMSHook_AppliesSynchronously(t *testing.T) {
	reverse := new(MockReverseSyncer)
	engine := newHooksTestRouter(new(MockPublisher), reverse)

	entry := map[string]any{"commerce_id": "prod_1", "title": "Renamed"}
	reverse.On("Apply", mock.Anything, domainsync.EntityTypeProduct, entry).Return(nil)

	rec := postJSON(engine, "/hooks/cms", map[string]any{
		"entityType": "product",
		"entry":      entry,
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	reverse.AssertExpectations(t)
}

func TestCMSHook_FailureAnswersNon2xx(t *testing.T) {
	reverse := new(MockReverseSyncer)
	engine := newHooksTestRouter(new(MockPublisher), reverse)

	reverse.On("Apply", mock.Anything, domainsync.EntityTypeProduct, mock.Anything).
		Return(errors.New("commerce unreachable"))

	rec := postJSON(engine, "/hooks/cms", map[string]any{
		"entityType": "product",
		"entry":      map[string]any{"commerce_id": "prod_1"},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
