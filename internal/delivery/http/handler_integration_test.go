package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labellens/backend/config"
	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/usecase"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	// Set Gin to test mode once for all tests
	gin.SetMode(gin.TestMode)

	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"capacitor://*", "http://localhost:3000"},
		},
		Cache: config.CacheConfig{
			Type: "memory",
		},
	}
}

// setupTestRouter creates a router without any services; feature endpoints answer 501
func setupTestRouter() *gin.Engine {
	handler := NewHandler(nil, nil, nil, nil)
	if handler == nil {
		panic("setupTestRouter: NewHandler returned nil")
	}

	router := SetupRouter(testConfig(), handler, nil)
	if router == nil {
		panic("setupTestRouter: SetupRouter returned nil *gin.Engine")
	}
	return router
}

// --- Mock implementations ---

type stubOracle struct {
	body string
	err  error
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) Analyze(ctx context.Context, req *domain.OracleRequest) (string, error) {
	return s.body, s.err
}

type mockCacheRepository struct {
	data map[string][]byte
}

func newMockCacheRepository() *mockCacheRepository {
	return &mockCacheRepository{data: make(map[string][]byte)}
}

func (m *mockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	if value, ok := m.data[key]; ok {
		return value, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *mockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	return nil
}

func (m *mockCacheRepository) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

type mockBarcodeClient struct {
	product *domain.BarcodeProduct
	err     error
}

func (m *mockBarcodeClient) LookupBarcode(ctx context.Context, barcode string) (*domain.BarcodeProduct, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.product == nil {
		return &domain.BarcodeProduct{Barcode: barcode}, nil
	}
	return m.product, nil
}

type mockOCR struct {
	result *domain.OCRResult
	err    error
}

func (m *mockOCR) ExtractText(ctx context.Context, image []byte) (*domain.OCRResult, error) {
	return m.result, m.err
}

const oracleBody = `{
  "product": {"name": "Sea Salt Crackers", "category": "Snacks"},
  "ingredients": [
    {"name": "Wheat Flour", "category": "Grain", "description": "Refined flour", "healthRating": "caution", "concerns": [], "benefits": [], "isVegan": true, "isNatural": true},
    {"name": "Sea Salt", "category": "Mineral", "description": "Salt", "healthRating": "safe", "concerns": [], "benefits": [], "isVegan": true, "isNatural": true}
  ],
  "overall_rating": 68,
  "letter_grade": "B",
  "personalized_warnings": [],
  "personalized_advice": ["Fine in moderation"],
  "confidence": 0.9,
  "disclaimer": "Informational only."
}`

type testDeps struct {
	oracle  domain.Oracle
	barcode domain.BarcodeClient
	ocr     domain.OCRProvider
}

// setupTestRouterWithServices wires real services around mocked collaborators
func setupTestRouterWithServices(deps testDeps) *gin.Engine {
	analysis := usecase.NewAnalysisService(deps.oracle, nil, usecase.AnalysisServiceConfig{OracleTimeout: time.Second})
	scans := usecase.NewScanService(analysis, deps.barcode, deps.ocr, newMockCacheRepository(), nil, usecase.ScanServiceConfig{})
	handler := NewHandler(analysis, scans, usecase.NewComparisonService(), nil)
	return SetupRouter(testConfig(), handler, nil)
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}

// TestHealthCheckEndpoint tests the health check endpoint
func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		w := doJSON(setupTestRouter(), "GET", "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "labellens-backend", response["service"])
		assert.Equal(t, "none", response["oracle"])
		version, ok := response["version"].(string)
		assert.True(t, ok && strings.TrimSpace(version) != "")
	})

	t.Run("reports the configured oracle", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{oracle: &stubOracle{body: oracleBody}})
		response := decode(t, doJSON(router, "GET", "/health", ""))
		assert.Equal(t, "stub", response["oracle"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter()
		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			w := doJSON(router, method, "/health", "")
			assert.Equal(t, http.StatusNotFound, w.Code, "method %s", method)
		}
	})
}

// TestUnconfiguredServices tests that every feature endpoint answers 501 without its service
func TestUnconfiguredServices(t *testing.T) {
	endpoints := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/analyze"},
		{"POST", "/api/v1/analyze/image"},
		{"POST", "/api/v1/classify"},
		{"POST", "/api/v1/compare"},
		{"POST", "/api/v1/barcode/analyze"},
		{"GET", "/api/v1/barcode/3017620422003"},
	}

	for _, endpoint := range endpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			w := doJSON(setupTestRouter(), endpoint.method, endpoint.path, `{}`)

			assert.Equal(t, http.StatusNotImplemented, w.Code)
			assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
			errorMsg, _ := decode(t, w)["error"].(string)
			assert.Contains(t, errorMsg, "not configured")
		})
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	t.Run("returns the oracle analysis", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{oracle: &stubOracle{body: oracleBody}})

		w := doJSON(router, "POST", "/api/v1/analyze",
			`{"productName":"Crackers","category":"Snacks","text":"Ingredients: wheat flour, sea salt."}`)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, "Sea Salt Crackers", response["name"])
		assert.Equal(t, float64(68), response["overallScore"])
		assert.Equal(t, "B", response["letterGrade"])
		assert.Equal(t, false, response["degraded"])
		assert.NotEmpty(t, response["id"])
		ingredients, _ := response["ingredients"].([]interface{})
		assert.Len(t, ingredients, 2)
	})

	t.Run("backfills truncated oracle output", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{oracle: &stubOracle{body: `{"product":{`}})

		w := doJSON(router, "POST", "/api/v1/analyze",
			`{"productName":"Crackers","text":"Ingredients: wheat flour, sea salt."}`)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, "Crackers", response["name"])
		assert.Equal(t, float64(50), response["overallScore"])
		assert.Equal(t, "C", response["letterGrade"])
	})

	t.Run("degrades to heuristic analysis on unusable oracle output", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{oracle: &stubOracle{body: "I cannot help with that"}})

		w := doJSON(router, "POST", "/api/v1/analyze",
			`{"productName":"Crackers","text":"Ingredients: wheat flour, sea salt."}`)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, float64(50), response["overallScore"])
		assert.Equal(t, "C", response["letterGrade"])
		assert.Equal(t, true, response["degraded"])
		ingredients, _ := response["ingredients"].([]interface{})
		assert.Len(t, ingredients, 2)
	})

	t.Run("returns 400 for invalid JSON", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{})
		w := doJSON(router, "POST", "/api/v1/analyze", `{invalid json}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClassifyEndpoint(t *testing.T) {
	router := setupTestRouterWithServices(testDeps{})

	t.Run("nutrition table", func(t *testing.T) {
		text := "Nutrition Facts\\nServing Size 1 cup (240ml)\\nCalories 150\\nTotal Fat 8g 10%\\nSodium 170mg 8%\\nProtein 8g"
		w := doJSON(router, "POST", "/api/v1/classify", `{"text":"`+text+`"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, "nutrition_table", response["kind"])
		assert.NotNil(t, response["nutrition"])
	})

	t.Run("ingredient list", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/v1/classify", `{"text":"Ingredients: Water, Sugar, Salt"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, "ingredient_list", response["kind"])
		assert.Equal(t, []interface{}{"water", "sugar", "salt"}, response["ingredients"])
		assert.Equal(t, "Water, Sugar, Salt", response["analysisText"])
	})

	t.Run("empty text is rejected", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/v1/classify", `{"text":"   "}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestBarcodeEndpoints(t *testing.T) {
	found := &domain.BarcodeProduct{
		Barcode:         "3017620422003",
		Name:            "Sea Salt Crackers",
		Brand:           "Acme",
		Category:        "Snacks",
		IngredientsText: "Wheat flour, sea salt",
		Found:           true,
	}

	t.Run("lookup returns the product", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{barcode: &mockBarcodeClient{product: found}})

		w := doJSON(router, "GET", "/api/v1/barcode/3017620422003", "")

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, "Sea Salt Crackers", response["name"])
		assert.Equal(t, true, response["found"])
	})

	t.Run("lookup of unknown barcode is 404", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{barcode: &mockBarcodeClient{}})
		w := doJSON(router, "GET", "/api/v1/barcode/12345678", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed barcode is 400", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{barcode: &mockBarcodeClient{product: found}})
		w := doJSON(router, "GET", "/api/v1/barcode/abc", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("upstream failure is 502", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{barcode: &mockBarcodeClient{err: domain.ErrBarcodeLookupFailure}})

		w := doJSON(router, "GET", "/api/v1/barcode/3017620422003", "")

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "Barcode database temporarily unavailable", decode(t, w)["error"])
	})

	t.Run("analyze feeds ingredients to the pipeline", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{
			oracle:  &stubOracle{body: oracleBody},
			barcode: &mockBarcodeClient{product: found},
		})

		w := doJSON(router, "POST", "/api/v1/barcode/analyze", `{"barcode":"3017620422003"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, "3017620422003", response["barcode"])
		assert.Equal(t, "Acme", response["brand"])
		assert.Equal(t, float64(68), response["overallScore"])
	})
}

func TestAnalyzeImageEndpoint(t *testing.T) {
	image := base64.StdEncoding.EncodeToString([]byte("fake-png-bytes"))

	t.Run("analyzes recognised text", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{
			oracle: &stubOracle{body: oracleBody},
			ocr:    &mockOCR{result: &domain.OCRResult{Text: "Ingredients: wheat flour, sea salt", Labels: []string{"Snack", "Cracker"}}},
		})

		w := doJSON(router, "POST", "/api/v1/analyze/image", `{"image":"`+image+`"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "B", decode(t, w)["letterGrade"])
	})

	t.Run("no text is 422", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{ocr: &mockOCR{result: &domain.OCRResult{}}})
		w := doJSON(router, "POST", "/api/v1/analyze/image", `{"image":"`+image+`"}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("invalid base64 is 400", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{ocr: &mockOCR{result: &domain.OCRResult{Text: "x"}}})
		w := doJSON(router, "POST", "/api/v1/analyze/image", `{"image":"***"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("OCR failure is 502", func(t *testing.T) {
		router := setupTestRouterWithServices(testDeps{ocr: &mockOCR{err: domain.ErrOCRFailure}})
		w := doJSON(router, "POST", "/api/v1/analyze/image", `{"image":"`+image+`"}`)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestCompareEndpoint(t *testing.T) {
	router := setupTestRouterWithServices(testDeps{})

	t.Run("ranks products", func(t *testing.T) {
		body := `{"products":[
			{"id":"x","name":"X","overallScore":60,"ingredients":[{"name":"Sugar","healthRating":"caution"}]},
			{"id":"y","name":"Y","overallScore":80,"ingredients":[{"name":"sugar","healthRating":"caution"},{"name":"Salt","healthRating":"safe"}]}
		]}`

		w := doJSON(router, "POST", "/api/v1/compare", body)

		assert.Equal(t, http.StatusOK, w.Code)
		response := decode(t, w)
		assert.Equal(t, []interface{}{"y", "x"}, response["rankedOrder"])
		differing, _ := response["differingIngredients"].([]interface{})
		require.Len(t, differing, 1)
		assert.Equal(t, "Salt", differing[0].(map[string]interface{})["ingredientName"])
	})

	t.Run("more than five products is 400", func(t *testing.T) {
		products := make([]string, 6)
		for i := range products {
			products[i] = `{"id":"p","name":"P","overallScore":50}`
		}
		w := doJSON(router, "POST", "/api/v1/compare", `{"products":[`+strings.Join(products, ",")+`]}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	t.Run("health endpoint has CORS for the mobile app", func(t *testing.T) {
		router := setupTestRouter()

		req, _ := http.NewRequest("GET", "/health", nil)
		req.Header.Set("Origin", "capacitor://localhost")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "capacitor://localhost", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	router := setupTestRouter()
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := doJSON(router, "GET", "/panic", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode(t, w)["error"])
}

// TestAPIVersioning tests that API v1 routes are correctly versioned
func TestAPIVersioning(t *testing.T) {
	router := setupTestRouter()

	for _, path := range []string{"/api/analyze", "/analyze", "/api/v2/analyze"} {
		w := doJSON(router, "POST", path, "")
		assert.Equal(t, http.StatusNotFound, w.Code, "path %s", path)
	}
}
