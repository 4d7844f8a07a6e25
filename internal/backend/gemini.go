package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"
)

// ProviderGemini is the identifier prefix routed to the Gemini API
const ProviderGemini = "gemini"

const defaultGeminiTemperature = float32(0.7)

// GeminiOpts configures the Gemini generator
type GeminiOpts struct {
	APIKey      string
	BaseURL     string
	Temperature *float32
	Media       *MediaStore
}

// GeminiGenerator sends frames as inline bytes to the Gemini API. The client
// is created on first use so a missing key only fails Gemini backends.
type GeminiGenerator struct {
	opts  GeminiOpts
	media *MediaStore

	once      sync.Once
	client    *genai.Client
	clientErr error
}

// NewGeminiGenerator creates a Gemini generator
func NewGeminiGenerator(opts GeminiOpts) *GeminiGenerator {
	if opts.Temperature == nil {
		opts.Temperature = genai.Ptr(defaultGeminiTemperature)
	}
	media := opts.Media
	if media == nil {
		media = NewMediaStore(0)
	}
	return &GeminiGenerator{opts: opts, media: media}
}

// init creates the shared client once; the caller's deadline does not carry
// into it since the client outlives the call.
func (g *GeminiGenerator) init(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		if g.opts.APIKey == "" {
			g.clientErr = fmt.Errorf("%s: %w", ProviderGemini, ErrMissingAPIKey)
			return
		}
		g.client, g.clientErr = genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
			APIKey:      g.opts.APIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: g.opts.BaseURL},
		})
		if g.clientErr != nil {
			g.clientErr = fmt.Errorf("failed to create gemini client: %w", g.clientErr)
		}
	})
	return g.client, g.clientErr
}

// Generate implements Generator
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, media []string, backendID string) (string, error) {
	client, err := g.init(ctx)
	if err != nil {
		return "", err
	}

	model := strings.TrimPrefix(backendID, ProviderGemini+"/")

	images, err := g.media.LoadAll(media)
	if err != nil {
		return "", err
	}

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	for _, img := range images {
		parts = append(parts, genai.NewPartFromBytes(img.Data, img.MimeType))
	}

	resp, err := client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{Temperature: g.opts.Temperature},
	)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%s %s: %w", ProviderGemini, model, ErrEmptyResponse)
	}
	return text, nil
}
