package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"varasto/internal/domain/warehouse"
	v1 "varasto/internal/infrastructure/http/v1"
	"varasto/internal/infrastructure/audit"
	"varasto/internal/infrastructure/metrics"
	"varasto/internal/infrastructure/storage/memory"
	"varasto/pkg/logger"
)

type testServer struct {
	t      *testing.T
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	journal, err := audit.NewJournal(audit.Config{})
	require.NoError(t, err)
	t.Cleanup(journal.Close)

	m := metrics.New()
	dir := warehouse.NewDirectory(warehouse.DirectoryConfig{
		Repo:     memory.NewWarehouseRepo(),
		Journal:  journal,
		Observer: m,
	})
	router := v1.NewRouter(v1.RouterConfig{
		Directory: dir,
		Logger:    logger.NewNop(),
		Metrics:   m,
		AppName:   "varasto",
		Version:   "test",
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path string, body any) (int, map[string]any) {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (s *testServer) create(name string, capacity, initial any) map[string]any {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/api/v1/warehouses", map[string]any{
		"name":           name,
		"capacity":       capacity,
		"initialBalance": initial,
	})
	require.Equal(s.t, http.StatusCreated, status, body)
	return body
}

func products(body map[string]any) map[string]any {
	wh := body["warehouse"].(map[string]any)
	return wh["products"].(map[string]any)
}

func TestCreateAndGetWarehouse(t *testing.T) {
	s := newTestServer(t)

	created := s.create("Main", 100, "20")
	assert.Equal(t, float64(1), created["id"])
	assert.Equal(t, "Main", created["name"])
	assert.Equal(t, "100", created["capacity"])
	assert.Equal(t, "20", created["balance"])
	assert.Equal(t, "80", created["remainingCapacity"])
	assert.Equal(t, "balance = 20, remaining capacity 80", created["summary"])

	status, got := s.do(http.MethodGet, "/api/v1/warehouses/1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Main", got["name"])

	status, list := s.do(http.MethodGet, "/api/v1/warehouses", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), list["totalCount"])
}

func TestCreateWarehouse_Validation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name    string
		body    map[string]any
		message string
	}{
		{"missing name", map[string]any{"capacity": 10}, "Name is required"},
		{"bad capacity", map[string]any{"name": "A", "capacity": "lots"}, "Invalid capacity value"},
		{"bad initial balance", map[string]any{"name": "A", "capacity": 10, "initialBalance": "x"}, "Invalid initial balance value"},
		{"zero capacity", map[string]any{"name": "A", "capacity": 0}, "Capacity must be positive"},
		{"missing capacity", map[string]any{"name": "A"}, "Capacity must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(http.MethodPost, "/api/v1/warehouses", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION_ERROR", body["code"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestCreateWarehouse_MalformedJSON(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/warehouses", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateWarehouse(t *testing.T) {
	s := newTestServer(t)
	s.create("Main", 100, 80)

	status, body := s.do(http.MethodPut, "/api/v1/warehouses/1", map[string]any{"name": "Smaller", "capacity": "50"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Smaller", body["name"])
	assert.Equal(t, "50", body["balance"])
	assert.Equal(t, "0", body["remainingCapacity"])

	status, body = s.do(http.MethodPut, "/api/v1/warehouses/1", map[string]any{"name": "", "capacity": "50"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Name is required", body["message"])
}

func TestStockMovements(t *testing.T) {
	s := newTestServer(t)
	s.create("Main", 100, 20)

	status, body := s.do(http.MethodPost, "/api/v1/warehouses/1/stock/add", map[string]any{"amount": 30})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "30", body["applied"])
	assert.Equal(t, "50", body["quantity"])
	assert.Equal(t, "Added 30 to warehouse", body["message"])

	status, body = s.do(http.MethodPost, "/api/v1/warehouses/1/stock/add", map[string]any{"amount": 500})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "50", body["applied"])

	status, body = s.do(http.MethodPost, "/api/v1/warehouses/1/stock/remove", map[string]any{"amount": "20"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Removed 20 from warehouse", body["message"])
	assert.Equal(t, "80", body["quantity"])
}

func TestProductMovements(t *testing.T) {
	s := newTestServer(t)
	s.create("W1", 100, 0)

	status, body := s.do(http.MethodPost, "/api/v1/warehouses/1/products/add", map[string]any{"productName": "Apples", "amount": 20})
	require.Equal(t, http.StatusOK, status, body)
	status, body = s.do(http.MethodPost, "/api/v1/warehouses/1/products/add", map[string]any{"productName": "Apples", "amount": 15})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "35", products(body)["Apples"])
	assert.Equal(t, "Added 15 Apples to warehouse", body["message"])

	s.do(http.MethodPost, "/api/v1/warehouses/1/products/add", map[string]any{"productName": "Oranges", "amount": 50})
	status, body = s.do(http.MethodPost, "/api/v1/warehouses/1/products/remove", map[string]any{"productName": "Oranges", "amount": 20})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "20", body["applied"])
	assert.Equal(t, "30", products(body)["Oranges"])

	status, body = s.do(http.MethodPost, "/api/v1/warehouses/1/products/remove", map[string]any{"productName": "Oranges", "amount": 30})
	require.Equal(t, http.StatusOK, status, body)
	assert.NotContains(t, products(body), "Oranges")
	assert.Contains(t, products(body), "Apples")
}

func TestProductMovements_Errors(t *testing.T) {
	s := newTestServer(t)
	s.create("W1", 100, 0)

	tests := []struct {
		name    string
		path    string
		body    map[string]any
		status  int
		code    string
		message string
	}{
		{
			name:    "empty product name",
			path:    "/api/v1/warehouses/1/products/add",
			body:    map[string]any{"productName": "", "amount": 10},
			status:  http.StatusBadRequest,
			code:    "VALIDATION_ERROR",
			message: "Product name is required",
		},
		{
			name:    "negative amount",
			path:    "/api/v1/warehouses/1/products/add",
			body:    map[string]any{"productName": "Apples", "amount": -10},
			status:  http.StatusBadRequest,
			code:    "VALIDATION_ERROR",
			message: "Amount must be a positive number",
		},
		{
			name:    "zero amount",
			path:    "/api/v1/warehouses/1/products/add",
			body:    map[string]any{"productName": "Apples", "amount": 0},
			status:  http.StatusBadRequest,
			code:    "VALIDATION_ERROR",
			message: "Amount must be a positive number",
		},
		{
			name:    "unknown product",
			path:    "/api/v1/warehouses/1/products/remove",
			body:    map[string]any{"productName": "Kiwis", "amount": 1},
			status:  http.StatusNotFound,
			code:    "PRODUCT_NOT_FOUND",
			message: "Product not found in warehouse",
		},
		{
			name:    "unknown warehouse",
			path:    "/api/v1/warehouses/99/products/add",
			body:    map[string]any{"productName": "Apples", "amount": 1},
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "Warehouse not found",
		},
		{
			name:    "unknown warehouse with invalid amount",
			path:    "/api/v1/warehouses/99/stock/add",
			body:    map[string]any{"amount": -1},
			status:  http.StatusNotFound,
			code:    "NOT_FOUND",
			message: "Warehouse not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["code"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestInvalidID(t *testing.T) {
	s := newTestServer(t)

	status, body := s.do(http.MethodGet, "/api/v1/warehouses/abc", nil)

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid id format", body["message"])
}

func TestDeleteWarehouse(t *testing.T) {
	s := newTestServer(t)
	s.create("A", 10, 0)
	s.create("B", 10, 0)

	status, body := s.do(http.MethodDelete, "/api/v1/warehouses/2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, `Warehouse "B" deleted successfully`, body["message"])

	_, list := s.do(http.MethodGet, "/api/v1/warehouses", nil)
	assert.Equal(t, float64(1), list["totalCount"])

	status, body = s.do(http.MethodDelete, "/api/v1/warehouses/2", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Warehouse not found", body["message"])

	created := s.create("C", 10, 0)
	assert.Equal(t, float64(3), created["id"])
}

func TestHistoryEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.create("Main", 10, 0)
	s.do(http.MethodPost, "/api/v1/warehouses/1/stock/add", map[string]any{"amount": 4})
	s.do(http.MethodDelete, "/api/v1/warehouses/1", nil)

	status, body := s.do(http.MethodGet, "/api/v1/warehouses/1/history?limit=2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(2), body["totalCount"])

	items := body["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, "delete", first["action"])
	assert.NotEmpty(t, first["requestId"])
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	s.create("Main", 10, 0)
	s.do(http.MethodPost, "/api/v1/warehouses/1/stock/add", map[string]any{"amount": 40})

	status, body := s.do(http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = s.do(http.MethodGet, "/health/info", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "varasto", body["app"])
	assert.Equal(t, float64(1), body["warehouses"])

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	text := w.Body.String()
	assert.Contains(t, text, "varasto_warehouses 1")
	assert.Contains(t, text, `varasto_stock_clamped_total{operation="add_stock"} 1`)
	assert.Contains(t, text, `route="/api/v1/warehouses/:id/stock/add"`)
}

func TestProductMovements_EchoTrimmedName(t *testing.T) {
	s := newTestServer(t)
	s.create("W1", 100, 0)

	status, body := s.do(http.MethodPost, "/api/v1/warehouses/1/products/add", map[string]any{"productName": "  Apples  ", "amount": 3})
	require.Equal(t, http.StatusOK, status, body)

	assert.Equal(t, "Apples", body["product"])
	assert.Equal(t, "Added 3 Apples to warehouse", body["message"])
	assert.Equal(t, "3", products(body)["Apples"])
}

func TestTinyExponentAmountIsRejected(t *testing.T) {
	s := newTestServer(t)
	s.create("W1", 100, 0)

	status, body := s.do(http.MethodPost, "/api/v1/warehouses/1/products/add", map[string]any{"productName": "P", "amount": "1e-20000000"})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Amount must be a positive number", body["message"])
}
