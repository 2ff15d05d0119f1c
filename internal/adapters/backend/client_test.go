// internal/adapters/backend/client_test.go
package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/dropdash/internal/adapters/backend"
	"github.com/ammerola/dropdash/internal/core/domain"
	"github.com/ammerola/dropdash/test/helpers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, onExpired backend.SessionExpiredHandler) *backend.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return backend.NewClient(backend.Config{
		BaseURL: server.URL,
		Token:   "test-token",
	}, helpers.TestLogger(), onExpired)
}

func TestClient_ListCollections(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/collections", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]domain.Collection{helpers.CreateTestCollection()})
	}, nil)

	collections, err := client.ListCollections(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, 1)
	assert.Equal(t, "Summer Drop 24", collections[0].Name)
	assert.True(t, collections[0].Capital.Equal(decimal.NewFromInt(1200)))
}

func TestClient_ListItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/items", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("collection_id"))

		json.NewEncoder(w).Encode(helpers.CreateTestItems(42, 2, 1))
	}, nil)

	items, err := client.ListItems(context.Background(), 42)
	require.NoError(t, err)
	assert.Len(t, items, 3)
}

func TestClient_UpdateCollection(t *testing.T) {
	collection := helpers.CreateTestCollection(func(c *domain.Collection) { c.ID = 5 })

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/collections/5", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var received domain.Collection
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		assert.Equal(t, int64(5), received.ID)
		assert.Equal(t, collection.Name, received.Name)

		received.Name = "Canonical Name"
		json.NewEncoder(w).Encode(received)
	}, nil)

	updated, err := client.UpdateCollection(context.Background(), collection)
	require.NoError(t, err)
	assert.Equal(t, "Canonical Name", updated.Name)
}

func TestClient_SessionExpired(t *testing.T) {
	var handlerCalled bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, func() {
		handlerCalled = true
	})

	_, err := client.ListOrders(context.Background())
	assert.ErrorIs(t, err, backend.ErrSessionExpired)
	assert.True(t, handlerCalled, "session handler runs before the error surfaces")
}

func TestClient_ErrorStatusIncludesBodyDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"qty cannot be negative"}`))
	}, nil)

	_, err := client.ListCollections(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 422")
	assert.Contains(t, err.Error(), "qty cannot be negative")
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListOrders(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
