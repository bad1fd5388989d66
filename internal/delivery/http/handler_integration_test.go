package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pricelens/backend/config"
	"github.com/pricelens/backend/internal/infrastructure/cache"
	"github.com/pricelens/backend/internal/infrastructure/metrics"
	"github.com/pricelens/backend/internal/infrastructure/settings"
	"github.com/pricelens/backend/internal/infrastructure/sqlite"
	"github.com/pricelens/backend/internal/usecase"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		RateLimit: config.RateLimitConfig{PerIP: 10000, Burst: 1000, MaxClients: 100},
	}
}

type testServer struct {
	router  *gin.Engine
	metrics *metrics.Metrics
}

// setupTestServer wires the real engine and history service over an
// in-memory sqlite database. withHistory=false leaves history unconfigured.
func setupTestServer(t *testing.T, withHistory bool) *testServer {
	t.Helper()

	provider, err := settings.NewProvider(0.10, "g")
	require.NoError(t, err)

	engine := usecase.NewComparisonEngine(usecase.EngineConfig{})
	m := metrics.New()

	var history *usecase.HistoryService
	if withHistory {
		repo, err := sqlite.Open(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })

		memCache := cache.NewMemoryCache(0)
		t.Cleanup(memCache.Close)

		history = usecase.NewHistoryService(repo, memCache, engine, usecase.HistoryServiceConfig{})
	}

	handler := NewHandler(engine, history, provider, m)
	return &testServer{router: SetupRouter(testConfig(), handler, m), metrics: m}
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheckEndpoint(t *testing.T) {
	srv := setupTestServer(t, false)

	w := srv.do(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode(t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "pricelens-backend", body["service"])

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		assert.Equal(t, http.StatusNotFound, srv.do(method, "/health", "").Code, method)
	}
}

func TestUnitsAndSettingsEndpoints(t *testing.T) {
	srv := setupTestServer(t, false)

	w := srv.do(http.MethodGet, "/api/v1/units", "")
	require.Equal(t, http.StatusOK, w.Code)
	units := decode(t, w)["units"].([]interface{})
	assert.Len(t, units, 17)
	first := units[0].(map[string]interface{})
	assert.Equal(t, "g", first["code"])
	assert.Equal(t, "weight", first["category"])
	assert.Equal(t, true, first["isBase"])

	w = srv.do(http.MethodGet, "/api/v1/settings", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "0.1", body["defaultTaxRate"])
	assert.Equal(t, "g", body["defaultUnit"])
}

func TestValidateEndpoint(t *testing.T) {
	srv := setupTestServer(t, false)

	t.Run("valid product", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/validate", `{"name":"Milk","price":"１９８","quantity":"1","unit":"l"}`)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, true, body["valid"])
		assert.Equal(t, "198", body["candidate"].(map[string]interface{})["price"])
	})

	t.Run("reports every field", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/validate", `{"name":"","price":"abc","quantity":"0"}`)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, false, body["valid"])

		errs := body["errors"].([]interface{})
		require.Len(t, errs, 3)
		assert.Equal(t, "name", errs[0].(map[string]interface{})["field"])
		assert.Equal(t, "invalid_format", errs[1].(map[string]interface{})["kind"])
		assert.Equal(t, "negative_or_zero", errs[2].(map[string]interface{})["kind"])
	})

	t.Run("malformed JSON", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/validate", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "invalid_request", decode(t, w)["kind"])
	})
}

func TestCompareEndpoint(t *testing.T) {
	t.Run("returns the cheaper product", func(t *testing.T) {
		srv := setupTestServer(t, false)

		w := srv.do(http.MethodPost, "/api/v1/compare", `{
			"productA": {"name":"Big bag","price":"500","quantity":"1","unit":"kg"},
			"productB": {"name":"Small bag","price":"300","quantity":"500","unit":"g"}
		}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decode(t, w)
		assert.Equal(t, "productA", body["winner"])
		details := body["details"].(map[string]interface{})
		assert.Equal(t, "0.5", details["unitPriceA"])
		assert.Equal(t, "0.6", details["unitPriceB"])
		assert.NotEmpty(t, body["recommendations"])

		assert.Equal(t, float64(1), testutil.ToFloat64(srv.metrics.ComparisonsTotal.WithLabelValues("pair", "productA")))
	})

	t.Run("incompatible units", func(t *testing.T) {
		srv := setupTestServer(t, false)

		w := srv.do(http.MethodPost, "/api/v1/compare", `{
			"productA": {"name":"Flour","price":"200","quantity":"1","unit":"kg"},
			"productB": {"name":"Milk","price":"200","quantity":"1","unit":"l"}
		}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		body := decode(t, w)
		assert.Equal(t, "incompatible_units", body["kind"])
		assert.Contains(t, body["suggestion"], "same kind")
		assert.Equal(t, float64(1), testutil.ToFloat64(srv.metrics.FailuresTotal.WithLabelValues("pair", "incompatible_units")))
	})

	t.Run("field errors for both sides", func(t *testing.T) {
		srv := setupTestServer(t, false)

		w := srv.do(http.MethodPost, "/api/v1/compare", `{
			"productA": {"name":"","price":"100","quantity":"1"},
			"productB": {"name":"Eggs","price":"200","quantity":"1.5","unit":"pack"}
		}`)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		body := decode(t, w)
		assert.Equal(t, "both_products_invalid", body["kind"])
		details := body["details"].([]interface{})
		require.Len(t, details, 2)
		assert.Equal(t, "a", details[0].(map[string]interface{})["product"])
		assert.Equal(t, "b", details[1].(map[string]interface{})["product"])
		assert.Equal(t, "must_be_integer", details[1].(map[string]interface{})["kind"])
	})
}

func TestHistoryEndpoints(t *testing.T) {
	srv := setupTestServer(t, true)

	w := srv.do(http.MethodPost, "/api/v1/history", `{
		"product": {"name":"Rice","price":"2000","quantity":"5","unit":"kg"},
		"store": "station mall",
		"purchasedAt": "2026-03-01T10:00:00Z"
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := decode(t, w)["id"].(string)
	require.NotEmpty(t, id)

	w = srv.do(http.MethodGet, "/api/v1/history/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "station mall", decode(t, w)["store"])

	w = srv.do(http.MethodGet, "/api/v1/history?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode(t, w)["count"])

	t.Run("compare with one record", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/compare/history/"+id, `{"product":{"name":"Rice sale","price":"1500","quantity":"5","unit":"kg"}}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		result := decode(t, w)["result"].(map[string]interface{})
		assert.Equal(t, "productA", result["winner"])
	})

	t.Run("compare with all history", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/compare/history", `{"product":{"name":"Rice premium","price":"3000","quantity":"5","unit":"kg"}}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		body := decode(t, w)
		assert.Len(t, body["entries"], 1)
		assert.NotNil(t, body["best"])
	})

	t.Run("invalid id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodGet, "/api/v1/history/not-a-uuid", "").Code)
	})

	t.Run("invalid purchase", func(t *testing.T) {
		w := srv.do(http.MethodPost, "/api/v1/history", `{"product":{"name":"Rice","price":"free","quantity":"5"}}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	w = srv.do(http.MethodDelete, "/api/v1/history/"+id, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(http.MethodGet, "/api/v1/history/"+id, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", decode(t, w)["kind"])
}

func TestHistoryEndpointsWithoutStore(t *testing.T) {
	srv := setupTestServer(t, false)

	w := srv.do(http.MethodGet, "/api/v1/history", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, decode(t, w)["error"], "not configured")
}

func TestCORSIntegration(t *testing.T) {
	srv := setupTestServer(t, false)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := setupTestServer(t, false)
	srv.do(http.MethodPost, "/api/v1/compare", `{
		"productA": {"name":"A","price":"100","quantity":"1"},
		"productB": {"name":"B","price":"200","quantity":"1"}
	}`)

	w := srv.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pricelens_comparisons_total")
}

func TestNonVersionedRoutesReturn404(t *testing.T) {
	srv := setupTestServer(t, false)
	assert.Equal(t, http.StatusNotFound, srv.do(http.MethodPost, "/compare", `{}`).Code)
}
