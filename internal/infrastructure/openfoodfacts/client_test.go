package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labellens/backend/internal/domain"
)

const foundBody = `{
  "code": "3017620422003",
  "status": 1,
  "status_verbose": "product found",
  "product": {
    "code": "3017620422003",
    "product_name": "Nutella",
    "brands": "Ferrero, Nutella",
    "categories": "Spreads, Sweet spreads",
    "ingredients_text": "Sugar, palm oil, hazelnuts 13%, skimmed milk powder 8.7%, fat-reduced cocoa 7.4%, emulsifier: lecithins (soya), vanillin.",
    "image_front_url": "https://images.example/nutella.jpg"
  }
}`

func TestNewClient(t *testing.T) {
	client := NewClient("https://world.openfoodfacts.org/", "", nil)

	assert.NotNil(t, client)
	assert.Equal(t, "https://world.openfoodfacts.org", client.baseURL)
	assert.Equal(t, defaultUserAgent, client.userAgent)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := NewClient("https://api.example.com", "test-agent", nil)
	assert.False(t, client.debug)

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 500 * time.Millisecond},
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
	}
}

func TestReadLimitedBody(t *testing.T) {
	body, err := readLimitedBody(strings.NewReader("0123456789"), 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(body))
}

func TestLookupBarcode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/3017620422003.json", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("fields"), "ingredients_text")
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(foundBody))
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-agent", nil)
	product, err := client.LookupBarcode(context.Background(), "3017620422003")

	require.NoError(t, err)
	assert.True(t, product.Found)
	assert.Equal(t, "Nutella", product.Name)
	assert.Equal(t, "Ferrero", product.Brand)
	assert.Equal(t, "Spreads", product.Category)
	assert.Contains(t, product.IngredientsText, "palm oil")
	assert.Equal(t, "https://images.example/nutella.jpg", product.ImageURL)
}

func TestLookupBarcode_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil)
	product, err := client.LookupBarcode(context.Background(), "0000000000000")

	require.NoError(t, err)
	assert.False(t, product.Found)
	assert.Equal(t, "0000000000000", product.Barcode)
}

func TestLookupBarcode_StatusZeroIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0,"status_verbose":"product not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil)
	product, err := client.LookupBarcode(context.Background(), "12345678")

	require.NoError(t, err)
	assert.False(t, product.Found)
}

func TestLookupBarcode_ServerError_Retries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(foundBody))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil)
	product, err := client.LookupBarcode(context.Background(), "3017620422003")

	require.NoError(t, err)
	assert.True(t, product.Found)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestLookupBarcode_ClientError_NoRetry(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil)
	product, err := client.LookupBarcode(context.Background(), "3017620422003")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrBarcodeLookupFailure)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestLookupBarcode_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 1, "product": `))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil)
	product, err := client.LookupBarcode(context.Background(), "3017620422003")

	assert.Nil(t, product)
	assert.ErrorIs(t, err, domain.ErrBarcodeLookupFailure)
}

func TestLookupBarcode_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "", nil)
	product, err := client.LookupBarcode(ctx, "3017620422003")

	assert.Nil(t, product)
	assert.Error(t, err)
}
