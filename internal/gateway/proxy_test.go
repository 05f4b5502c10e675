package gateway_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"OrderDesk/internal/catalog"
	"OrderDesk/internal/clock"
	"OrderDesk/internal/gateway"
	"OrderDesk/internal/order"
)

func newCatalogTS(t *testing.T) *httptest.Server {
	t.Helper()

	h := catalog.NewHandler(&catalog.Server{Store: catalog.NewStore()}, catalog.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "catalog",
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func newOrderTS(t *testing.T, catalogURL string) *httptest.Server {
	t.Helper()

	mount, err := gateway.CatalogRoutes(catalogURL, zap.NewNop())
	require.NoError(t, err)

	svc := order.NewService(order.NewStore(), order.NewCatalogClient(catalogURL),
		clock.NewFixed(time.Date(2023, time.November, 30, 9, 0, 0, 0, time.UTC)), zap.NewNop())

	h := order.NewHandler(&order.Server{Orders: svc, Log: zap.NewNop()}, order.HTTPDeps{
		Log:     zap.NewNop(),
		Service: "order",
		Mount:   mount,
	})
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url string, body any) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func TestCatalogRoutes_RemoteCatalog(t *testing.T) {
	catalogTS := newCatalogTS(t)
	ts := newOrderTS(t, catalogTS.URL)

	status, raw := do(t, http.MethodGet, ts.URL+"/api/products", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.JSONEq(t, `[{"id":1,"name":"Screw A","price":0.99},{"id":2,"name":"Screw B","price":0.89}]`, string(raw))

	status, raw = do(t, http.MethodGet, ts.URL+"/api/products/2", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":2,"name":"Screw B","price":0.89}`, string(raw))

	status, _ = do(t, http.MethodGet, ts.URL+"/api/products/99", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, raw = do(t, http.MethodPost, ts.URL+"/api/order", map[string]any{
		"items": []map[string]any{{"productId": 1, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, status, string(raw))
	assert.JSONEq(t, `{"orderId":1,"dateCreated":"2023-11-30"}`, string(raw))
}

func TestCatalogRoutes_UpstreamDown(t *testing.T) {
	catalogTS := newCatalogTS(t)
	url := catalogTS.URL
	catalogTS.Close()

	ts := newOrderTS(t, url)

	status, raw := do(t, http.MethodGet, ts.URL+"/api/products", nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, string(raw), `"error":"upstream unavailable"`)
}

func TestNewReverseProxy_BadTarget(t *testing.T) {
	for _, target := range []string{"", "catalog:8082", "://x"} {
		_, err := gateway.NewReverseProxy(target, nil)
		assert.Error(t, err, target)
	}
}
