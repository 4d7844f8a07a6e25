package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ProviderOpenRouter is the identifier prefix routed to OpenRouter
const ProviderOpenRouter = "openrouter"

// DefaultOpenRouterBaseURL is the OpenAI-compatible OpenRouter endpoint
const DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterOpts configures the OpenRouter generator
type OpenRouterOpts struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Media      *MediaStore
}

// OpenRouterGenerator talks to OpenRouter's chat completion API. Frames are
// sent inline as data: URLs.
type OpenRouterGenerator struct {
	client *openai.Client
	media  *MediaStore
	apiKey string
}

// NewOpenRouterGenerator creates a generator. A missing API key is reported
// per call so other providers keep working.
func NewOpenRouterGenerator(opts OpenRouterOpts) *OpenRouterGenerator {
	cfg := openai.DefaultConfig(opts.APIKey)
	cfg.BaseURL = opts.BaseURL
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultOpenRouterBaseURL
	}
	if opts.HTTPClient != nil {
		cfg.HTTPClient = opts.HTTPClient
	}

	media := opts.Media
	if media == nil {
		media = NewMediaStore(0)
	}

	return &OpenRouterGenerator{
		client: openai.NewClientWithConfig(cfg),
		media:  media,
		apiKey: opts.APIKey,
	}
}

// Generate implements Generator
func (g *OpenRouterGenerator) Generate(ctx context.Context, prompt string, media []string, backendID string) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("%s: %w", ProviderOpenRouter, ErrMissingAPIKey)
	}

	model := strings.TrimPrefix(backendID, ProviderOpenRouter+"/")

	images, err := g.media.LoadAll(media)
	if err != nil {
		return "", err
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: prompt},
	}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    img.DataURL(),
				Detail: openai.ImageURLDetailAuto,
			},
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:         openai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%s %s: %w", ProviderOpenRouter, model, ErrEmptyResponse)
	}

	return resp.Choices[0].Message.Content, nil
}
