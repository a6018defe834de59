package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/pkg/logger"
)

const maxProxyResponseBytes = 1 << 20

// ProxyOracle posts analysis requests to a backend that holds the model credentials
type ProxyOracle struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	log         *logger.Logger
}

// NewProxyOracle creates a new proxied oracle
func NewProxyOracle(config Config, log *logger.Logger) (*ProxyOracle, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("proxy oracle base URL is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	config = config.withDefaults()

	return &ProxyOracle{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		apiKey:  config.APIKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimiter: newLimiter(config.RequestsPerMinute),
		log:         log.With("oracle", "proxy"),
	}, nil
}

// Name returns the oracle name
func (o *ProxyOracle) Name() string {
	return "proxy"
}

// Analyze posts the request schema to {baseURL}/analyze and returns the body
func (o *ProxyOracle) Analyze(ctx context.Context, req *domain.OracleRequest) (string, error) {
	if err := o.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrOracleFailure, err)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/analyze", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if o.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrOracleFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProxyResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", domain.ErrOracleFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		o.log.Warn("proxy returned error status", "status", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", domain.ErrOracleFailure, resp.StatusCode)
	}

	content := strings.TrimSpace(string(body))
	if content == "" {
		return "", fmt.Errorf("%w: empty response body", domain.ErrOracleFailure)
	}
	return content, nil
}
