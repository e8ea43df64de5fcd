package openai

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stylesearch/internal/domain"
	"github.com/kailas-cloud/stylesearch/internal/domain/search/query"
	"github.com/kailas-cloud/stylesearch/internal/metrics"
)

// DefaultParserModel is the chat model used when ParserConfig.Model is empty.
const DefaultParserModel = "gpt-4-0125-preview"

const fashionQueryPrompt = `You are an expert fashion stylist. Your task is to extract the item category and relevant style tags from a user's query.

Let's think step by step.
Input: "{query}"

Step 1: Identify what category of clothing or items are mentioned. If no specific items are mentioned, leave it blank.
Step 2: Identify descriptors, aesthetics, seasons, or occasions mentioned.
Step 3: Format the output as:
Category: <comma-separated list>
Tags: <comma-separated list>`

var (
	categoryLine = regexp.MustCompile(`(?i)Category:[ \t]*(.+)`)
	tagsLine     = regexp.MustCompile(`(?i)Tags:[ \t]*(.+)`)
)

// ParserConfig holds the query parser settings.
type ParserConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds a single completion call. Zero means no client-side limit.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Parser extracts category and tag terms from a free-text query with a chat model.
type Parser struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewParser creates an OpenAI-compatible query parser.
func NewParser(cfg *ParserConfig) *Parser {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultParserModel
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Parser{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// Parse implements usecase/search.QueryParser.
func (p *Parser) Parse(ctx context.Context, text string) (query.Parsed, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text)},
		},
		// Zero is dropped by omitempty and the API would apply its default of 1.
		Temperature: math.SmallestNonzeroFloat32,
	}

	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ParserRequestsTotal.WithLabelValues(p.model, "error").Inc()
		return query.Parsed{}, parseAPIError("parser", err, domain.ErrQueryParserError)
	}

	if len(resp.Choices) == 0 {
		metrics.ParserRequestsTotal.WithLabelValues(p.model, "error").Inc()
		return query.Parsed{}, fmt.Errorf("empty completion: %w", domain.ErrQueryParserError)
	}

	metrics.ParserRequestsTotal.WithLabelValues(p.model, "success").Inc()
	metrics.ParserRequestDuration.WithLabelValues(p.model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.ParserTokensTotal.WithLabelValues(p.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ParserTokensTotal.WithLabelValues(p.model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	parsed := ParseCompletion(resp.Choices[0].Message.Content)

	p.logger.Debug("Query parsed",
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Strings("category", parsed.Category),
		zap.Strings("tags", parsed.Tags),
	)

	return parsed, nil
}

// HealthCheck verifies API availability via ListModels.
func (p *Parser) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func buildPrompt(text string) string {
	return strings.Replace(fashionQueryPrompt, "{query}", text, 1)
}

// ParseCompletion extracts the "Category:" and "Tags:" lists from a model answer.
// A missing line yields an empty list. Category entries that start with "tags:"
// come from answers that put both lists on one line and are dropped.
func ParseCompletion(content string) query.Parsed {
	categories := splitList(categoryLine.FindStringSubmatch(content))
	tags := splitList(tagsLine.FindStringSubmatch(content))

	kept := categories[:0]
	for _, c := range categories {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(c)), "tags:") {
			continue
		}
		kept = append(kept, c)
	}

	return query.NewParsed(kept, tags)
}

func splitList(match []string) []string {
	if len(match) < 2 {
		return nil
	}
	return strings.Split(match[1], ",")
}
