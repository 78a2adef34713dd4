package generator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"walink/internal/config"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"
)

const (
	defaultAnthropicModel = "claude-haiku-4-5-20251001"
	defaultOpenAIModel    = "gpt-4o-mini"
)

var errEmptyResponse = errors.New("empty response from AI")

// Provider is one text-generation backend in the fallback chain
type Provider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// NewProviders builds providers in configuration order
func NewProviders(cfgs []config.AIProvider, maxTokens int, httpClient *http.Client) ([]Provider, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	providers := make([]Provider, 0, len(cfgs))
	for _, cfg := range cfgs {
		p, err := newProvider(cfg, maxTokens, httpClient)
		if err != nil {
			return nil, fmt.Errorf("AI provider %q: %w", cfg.Name, err)
		}
		providers = append(providers, p)
	}
	return providers, nil
}

func newProvider(cfg config.AIProvider, maxTokens int, httpClient *http.Client) (Provider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("api key is empty")
	}

	name := cfg.Name
	if name == "" {
		name = cfg.Type
	}
	modelID := strings.TrimSpace(cfg.Model)
	endpoint := strings.TrimSpace(cfg.Endpoint)

	switch config.NormalizeProviderType(cfg.Type) {
	case config.ProviderAnthropic:
		if modelID == "" {
			modelID = defaultAnthropicModel
		}
		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
			anthropicoption.WithHTTPClient(httpClient),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}
		client := anthropicclient.NewClient(opts...)
		model := jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client))
		return &languageModelProvider{name: name, model: model, maxTokens: maxTokens}, nil

	case config.ProviderOpenAI:
		if modelID == "" {
			modelID = defaultOpenAIModel
		}
		opts := []openaioption.RequestOption{
			openaioption.WithAPIKey(apiKey),
			openaioption.WithMaxRetries(0),
			openaioption.WithHTTPClient(httpClient),
		}
		if base := normalizeOpenAIBaseURL(endpoint); base != "" {
			opts = append(opts, openaioption.WithBaseURL(base))
		}
		client := openaiclient.NewClient(opts...)
		model := jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client))
		return &languageModelProvider{name: name, model: model, maxTokens: maxTokens}, nil

	case config.ProviderOpenAICompatible:
		if modelID == "" {
			modelID = defaultOpenAIModel
		}
		return &compatibleProvider{
			name:      name,
			endpoint:  normalizeCompatibleEndpoint(endpoint),
			apiKey:    apiKey,
			model:     modelID,
			maxTokens: maxTokens,
			client:    httpClient,
		}, nil

	default:
		return nil, fmt.Errorf("unknown provider type %q", cfg.Type)
	}
}

// languageModelProvider adapts a jetify language model (Anthropic or OpenAI SDK underneath)
type languageModelProvider struct {
	name      string
	model     jetapi.LanguageModel
	maxTokens int
}

func (p *languageModelProvider) Name() string { return p.name }

func (p *languageModelProvider) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	resp, err := jetai.GenerateText(
		ctx,
		buildPromptMessages(systemPrompt, prompt),
		jetai.WithModel(p.model),
		jetai.WithMaxOutputTokens(p.maxTokens),
	)
	if err != nil {
		return "", err
	}
	return extractText(resp)
}

func buildPromptMessages(systemPrompt, prompt string) []jetapi.Message {
	messages := make([]jetapi.Message, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, &jetapi.SystemMessage{Content: systemPrompt})
	}
	messages = append(messages, &jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)})
	return messages
}

func extractText(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errEmptyResponse
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
