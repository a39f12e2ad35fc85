package understand

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/config"
	"github.com/haalarikone/haku-api/internal/models"
	"github.com/haalarikone/haku-api/internal/resilience"
)

// systemPrompt is the fixed instruction set for the extraction model. The
// model must respond with strict JSON matching extractionPayload.
const systemPrompt = `You interpret search queries for a directory of Finnish student overall (haalari) colors. ` +
	`Extract structured filters from the query and respond with strict JSON only, no narration. ` +
	`Schema: {"is_gibberish": boolean, "filters": {"color": string, "region": string, "field": string, "institution": string}, "semantic_query": string}. ` +
	`Rules: "color" is a color word exactly as written in the query. ` +
	`"region" is a Finnish region or city; normalize locative case endings to the base form (e.g. "Tampereelta" -> "Tampere"). ` +
	`"field" is a field of study; normalize plurals to singular. ` +
	`"institution" is a university or school name. ` +
	`Put remaining descriptive text in "semantic_query", or "" when nothing remains. ` +
	`Use "" for any filter that is not clearly present. ` +
	`Set "is_gibberish" true for spam, random characters or input with no plausible meaning in any of Finnish, English or Swedish.`

// OpenAIExtractor is the production slow path: a chat-completion call to an
// OpenAI-compatible endpoint behind a circuit breaker.
type OpenAIExtractor struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	cb      *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewOpenAIExtractor(cfg config.ExtractorConfig, cbCfg config.CircuitBreakerConfig, logger *zap.Logger) *OpenAIExtractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &OpenAIExtractor{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.RequestTimeout,
		cb:      resilience.NewCircuitBreaker("extractor", cbCfg, logger),
		logger:  logger,
	}
}

func (e *OpenAIExtractor) Extract(ctx context.Context, locale models.Locale, query string) (*models.Interpretation, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.cb.Execute(func() (any, error) {
		resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: e.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("locale: %s\nquery: %s", locale, query)},
			},
			Temperature: 0,
			N:           1,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("extraction call: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("extraction returned no choices")
		}
		return parseExtraction(resp.Choices[0].Message.Content)
	})
	if err != nil {
		return nil, err
	}

	in, ok := result.(*models.Interpretation)
	if !ok || in == nil {
		return nil, errors.New("extraction returned no usable output")
	}
	return in, nil
}

// extractionPayload mirrors the JSON contract in systemPrompt. Typed fields
// make type mismatches a parse error instead of silently propagating.
type extractionPayload struct {
	IsGibberish bool `json:"is_gibberish"`
	Filters     struct {
		Color       string `json:"color"`
		Region      string `json:"region"`
		Field       string `json:"field"`
		Institution string `json:"institution"`
	} `json:"filters"`
	SemanticQuery string `json:"semantic_query"`
}

func parseExtraction(raw string) (*models.Interpretation, error) {
	cleaned := strings.TrimSpace(raw)
	// Some models wrap JSON in a code fence despite the response format.
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload extractionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse extraction json: %w", err)
	}

	return &models.Interpretation{
		IsGibberish: payload.IsGibberish,
		Filters: models.Filters{
			Color:       strings.TrimSpace(payload.Filters.Color),
			Region:      strings.TrimSpace(payload.Filters.Region),
			Field:       strings.TrimSpace(payload.Filters.Field),
			Institution: strings.TrimSpace(payload.Filters.Institution),
		},
		SemanticQuery: strings.TrimSpace(payload.SemanticQuery),
	}, nil
}
