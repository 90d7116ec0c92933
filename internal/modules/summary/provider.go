package summary

import (
	"context"
	"errors"
	"fmt"
	"net"
	neturl "net/url"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	appcfg "github.com/healthconnect/portal/internal/config"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
)

const (
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultAnthropicModel  = "claude-haiku-4-5-20251001"
	defaultOpenRouterModel = "openai/gpt-4o-mini"
	defaultOpenRouterURL   = "https://openrouter.ai/api/v1"
	defaultMaxOutputTokens = 512
)

// Generator sends one rendered prompt to a text model and returns its raw
// reply. Implementations never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

func isOpenAICompatibleProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "openai-compatible" || t == "openaicompatible"
}

func isOpenRouterProviderType(raw string) bool {
	return normalizeProviderType(raw) == "openrouter"
}

func isAnthropicProviderType(raw string) bool {
	return normalizeProviderType(raw) == "anthropic"
}

// NewGenerator builds the generator for the configured summary model.
func NewGenerator(cfg appcfg.AIConfig) (Generator, *appcfg.AIProvider, error) {
	if !cfg.EnableSummary {
		return nil, nil, ErrNoProvider
	}
	provider := selectAIProvider(cfg, cfg.SummaryModel)
	if provider == nil {
		return nil, nil, ErrNoProvider
	}
	maxTokens := cfg.MaxOutputTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxOutputTokens
	}
	gen, err := buildGenerator(provider, maxTokens)
	if err != nil {
		return nil, nil, fmt.Errorf("provider %q: %w", provider.ID, err)
	}
	return gen, provider, nil
}

func buildGenerator(provider *appcfg.AIProvider, maxTokens int64) (Generator, error) {
	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return nil, errors.New("AI provider api key is empty")
	}
	modelID := strings.TrimSpace(provider.DefaultModel)
	endpoint := strings.TrimSpace(provider.Endpoint)

	switch {
	case isOpenAICompatibleProviderType(provider.Type), isOpenRouterProviderType(provider.Type):
		if modelID == "" {
			modelID = defaultOpenAIModel
			if isOpenRouterProviderType(provider.Type) {
				modelID = defaultOpenRouterModel
			}
		}
		if endpoint == "" && isOpenRouterProviderType(provider.Type) {
			endpoint = defaultOpenRouterURL
		}
		return newChatCompletionsGenerator(apiKey, endpoint, modelID, maxTokens), nil

	case isAnthropicProviderType(provider.Type):
		if modelID == "" {
			modelID = defaultAnthropicModel
		}
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(opts...)
		model := jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client))
		return &languageModelGenerator{model: model, maxTokens: maxTokens}, nil

	default:
		if modelID == "" {
			modelID = defaultOpenAIModel
		}
		opts := []openaioption.RequestOption{
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
		}
		if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
			opts = append(opts, openaioption.WithBaseURL(normalized))
		}
		client := openaiclient.NewClient(opts...)
		model := jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client))
		return &languageModelGenerator{model: model, maxTokens: maxTokens}, nil
	}
}

// languageModelGenerator drives OpenAI and Anthropic through the jetify SDK.
// The output shape travels in the system prompt.
type languageModelGenerator struct {
	model     jetapi.LanguageModel
	maxTokens int64
}

func (g *languageModelGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := jetai.GenerateText(
		ctx,
		buildPromptMessages(schemaSystemPrompt(), prompt),
		jetai.WithModel(g.model),
		jetai.WithMaxOutputTokens(int(g.maxTokens)),
	)
	if err != nil {
		return "", err
	}
	return extractTextFromResponse(resp)
}

// chatCompletionsGenerator talks to any OpenAI-compatible endpoint and asks
// for a strict JSON-schema response.
type chatCompletionsGenerator struct {
	client    openaiclient.Client
	model     string
	maxTokens int64
}

func newChatCompletionsGenerator(apiKey, endpoint, model string, maxTokens int64) *chatCompletionsGenerator {
	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}
	return &chatCompletionsGenerator{
		client:    openaiclient.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
	}
}

func (g *chatCompletionsGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openaiclient.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openaiclient.ChatCompletionMessageParamUnion{
			openaiclient.SystemMessage(schemaSystemPrompt()),
			openaiclient.UserMessage(prompt),
		},
		MaxTokens: openaiclient.Int(g.maxTokens),
		ResponseFormat: openaiclient.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   outputSchemaName,
					Schema: outputSchema,
					Strict: openaiclient.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if completion == nil || len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}

func schemaSystemPrompt() string {
	return `Output MUST be valid JSON only, with exactly one key: {"summary": string}. Do not wrap it in code fences.`
}

func buildPromptMessages(systemPrompt, prompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: systemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})
	return messages
}

func extractTextFromResponse(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", nil
	}
	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}
	return full.String(), nil
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		path += "/v1"
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

// selectAIProvider prefers the assigned provider, then the first enabled one.
// The assignment's model overrides the provider default.
func selectAIProvider(cfg appcfg.AIConfig, assignment *appcfg.AIModelAssignment) *appcfg.AIProvider {
	var providerID, overrideModel string
	if assignment != nil {
		providerID = strings.TrimSpace(assignment.ProviderID)
		overrideModel = strings.TrimSpace(assignment.Model)
	}

	pick := func(provider appcfg.AIProvider) *appcfg.AIProvider {
		selected := provider
		if overrideModel != "" {
			selected.DefaultModel = overrideModel
		}
		return &selected
	}

	if providerID != "" {
		for _, provider := range cfg.Providers {
			if provider.Enabled && strings.TrimSpace(provider.ID) == providerID {
				return pick(provider)
			}
		}
	}
	for _, provider := range cfg.Providers {
		if provider.Enabled {
			return pick(provider)
		}
	}
	return nil
}

// classifyGenerationError maps SDK and transport failures onto a FailureKind.
func classifyGenerationError(err error) FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var openaiErr *openaiclient.Error
	if errors.As(err, &openaiErr) {
		return kindForStatus(openaiErr.StatusCode)
	}
	var anthropicErr *anthropicclient.Error
	if errors.As(err, &anthropicErr) {
		return kindForStatus(anthropicErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return KindTimeout
		}
		return KindTransport
	}
	var urlErr *neturl.Error
	if errors.As(err, &urlErr) {
		return KindTransport
	}
	return KindBackend
}

func kindForStatus(status int) FailureKind {
	switch {
	case status == 429:
		return KindRateLimited
	case status == 408 || status == 504:
		return KindTimeout
	default:
		return KindBackend
	}
}
