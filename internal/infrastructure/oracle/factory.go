package oracle

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/pkg/logger"
)

// Supported providers
const (
	ProviderOpenAI = "openai"
	ProviderProxy  = "proxy"
	ProviderNone   = "none"
)

const (
	defaultModel             = "gpt-4o-mini"
	defaultTimeout           = 25 * time.Second
	defaultMaxTokens         = 2048
	defaultRequestsPerMinute = 60
)

// Config holds oracle transport configuration
type Config struct {
	// Provider name: "openai", "proxy", "none"
	Provider string

	APIKey  string
	BaseURL string
	Model   string

	Timeout   time.Duration
	MaxTokens int

	// Temperature is sent as given; 0 requests deterministic sampling
	Temperature float32

	// RequestsPerMinute caps outgoing calls; 0 uses the default
	RequestsPerMinute int
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = defaultMaxTokens
	}
	if c.Temperature < 0 {
		c.Temperature = 0
	}
	return c
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		perMinute = defaultRequestsPerMinute
	}
	burst := perMinute / 10
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// New creates the oracle named by config.Provider.
// Provider "none" (or empty) disables the oracle and returns nil.
func New(config Config, log *logger.Logger) (domain.Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case ProviderOpenAI:
		o, err := NewOpenAIOracle(config, log)
		if err != nil {
			return nil, err
		}
		return o, nil
	case ProviderProxy:
		o, err := NewProxyOracle(config, log)
		if err != nil {
			return nil, err
		}
		return o, nil
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown oracle provider: %s (supported: openai, proxy, none)", config.Provider)
	}
}
