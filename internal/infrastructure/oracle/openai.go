package oracle

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/labellens/backend/internal/domain"
	"github.com/labellens/backend/internal/pkg/logger"
)

// OpenAIOracle calls an OpenAI-compatible chat completions endpoint directly
type OpenAIOracle struct {
	client      *openai.Client
	config      Config
	rateLimiter *rate.Limiter
	log         *logger.Logger
}

// NewOpenAIOracle creates a new OpenAI oracle
func NewOpenAIOracle(config Config, log *logger.Logger) (*OpenAIOracle, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if log == nil {
		log = logger.NewNop()
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIOracle{
		client:      openai.NewClientWithConfig(clientConfig),
		config:      config.withDefaults(),
		rateLimiter: newLimiter(config.RequestsPerMinute),
		log:         log.With("oracle", "openai"),
	}, nil
}

// Name returns the oracle name
func (o *OpenAIOracle) Name() string {
	return "openai"
}

// Analyze sends the request as a chat completion and returns the message content
func (o *OpenAIOracle) Analyze(ctx context.Context, req *domain.OracleRequest) (string, error) {
	if err := o.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: rate limiter: %v", domain.ErrOracleFailure, err)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildPrompt(req),
			},
		},
		MaxTokens:   o.config.MaxTokens,
		Temperature: requestTemperature(o.config.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return "", fmt.Errorf("%w: OpenAI API error: %v", domain.ErrOracleFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no response from OpenAI", domain.ErrOracleFailure)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openai.FinishReasonLength {
		o.log.Warn("completion truncated by token limit", "max_tokens", o.config.MaxTokens)
	}
	o.log.Debug("completion received",
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
		"duration", time.Since(start))

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrOracleFailure)
	}
	return content, nil
}

// requestTemperature maps 0 to the smallest positive float32, since the
// client omits a zero temperature and the API then applies its own default
func requestTemperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
