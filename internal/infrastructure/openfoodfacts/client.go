package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/pkg/logger"
)

const (
	maxAttempts      = 3
	maxResponseBytes = 2 << 20
	productFields    = "code,product_name,product_name_en,generic_name,brands,categories,categories_tags,ingredients_text,ingredients_text_en,image_url,image_front_url"
	defaultUserAgent = "LabelLens/1.0 (+https://github.com/labellens/backend)"
)

// Client handles communication with the Open Food Facts product API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	rateLimiter *rate.Limiter
	log         *logger.Logger
	debug       bool
}

// NewClient creates a new Open Food Facts client
func NewClient(baseURL, userAgent string, log *logger.Logger) *Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if log == nil {
		log = logger.NewNop()
	}

	// Open Food Facts asks for at most 100 product reads per minute
	limiter := rate.NewLimiter(rate.Limit(100.0/60.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		userAgent:   userAgent,
		rateLimiter: limiter,
		log:         log.With("service", "OpenFoodFacts"),
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(msg string, keysAndValues ...interface{}) {
	if c.debug {
		c.log.Debug(msg, keysAndValues...)
	}
}

// exponentialBackoff returns the wait before retry n (500ms, 1s, 2s, ...)
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes of the body
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBarcodeLookupFailure, err)
	}
	return resp, nil
}

// LookupBarcode fetches a product by barcode. An unknown barcode is not an
// error: it returns a product with Found=false.
func (c *Client) LookupBarcode(ctx context.Context, barcode string) (*domain.BarcodeProduct, error) {
	c.debugLog("lookup barcode", "barcode", barcode)

	params := url.Values{}
	params.Add("fields", productFields)
	reqURL := fmt.Sprintf("%s/api/v2/product/%s.json?%s", c.baseURL, url.PathEscape(barcode), params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrBarcodeLookupFailure, ctx.Err())
			}
			c.log.Warn("request error", "attempt", attempt, "error", err)
			lastErr = err
			if !sleepContext(ctx, exponentialBackoff(attempt)) {
				return nil, fmt.Errorf("%w: %v", domain.ErrBarcodeLookupFailure, ctx.Err())
			}
			continue
		}

		body, readErr := readLimitedBody(resp.Body, maxResponseBytes)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			c.debugLog("barcode not found", "barcode", barcode)
			return &domain.BarcodeProduct{Barcode: barcode, Found: false}, nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			c.log.Warn("API error", "attempt", attempt, "status", resp.StatusCode)
			lastErr = fmt.Errorf("%w: status %d", domain.ErrBarcodeLookupFailure, resp.StatusCode)
			if !sleepContext(ctx, exponentialBackoff(attempt)) {
				return nil, fmt.Errorf("%w: %v", domain.ErrBarcodeLookupFailure, ctx.Err())
			}
			continue
		case resp.StatusCode != http.StatusOK:
			return nil, fmt.Errorf("%w: status %d", domain.ErrBarcodeLookupFailure, resp.StatusCode)
		}

		if readErr != nil {
			return nil, fmt.Errorf("%w: reading body: %v", domain.ErrBarcodeLookupFailure, readErr)
		}

		var productResp ProductResponse
		if err := json.Unmarshal(body, &productResp); err != nil {
			return nil, fmt.Errorf("%w: failed to decode response: %v", domain.ErrBarcodeLookupFailure, err)
		}

		product := MapToBarcodeProduct(barcode, &productResp)
		c.debugLog("barcode lookup done", "barcode", barcode, "found", product.Found)
		return product, nil
	}

	c.log.Warn("all retries failed", "barcode", barcode)
	return nil, lastErr
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
