package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrUnknownProvider is returned for identifiers whose provider has no generator
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrEmptyResponse is returned when a backend answers with no content
	ErrEmptyResponse = errors.New("empty response")
	// ErrMissingAPIKey is returned when a provider is used without credentials
	ErrMissingAPIKey = errors.New("missing API key")
)

// DefaultBackends is the ordered list of backends queried for every pair
var DefaultBackends = []string{
	"openrouter/google/gemini-2.0-flash-exp:free",
	"openrouter/openai/gpt-4o-mini",
	"openrouter/anthropic/claude-3-haiku:beta",
	"openrouter/x-ai/grok-2-vision-1212",
}

// Generator produces text for a prompt and attached media using one backend.
// Implementations must be safe for concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string, media []string, backendID string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface
type GeneratorFunc func(ctx context.Context, prompt string, media []string, backendID string) (string, error)

// Generate calls f
func (f GeneratorFunc) Generate(ctx context.Context, prompt string, media []string, backendID string) (string, error) {
	return f(ctx, prompt, media, backendID)
}

// SplitID splits "provider/model" into its parts. The model keeps any
// further slashes, e.g. "openrouter/openai/gpt-4o-mini".
func SplitID(backendID string) (provider, model string, err error) {
	provider, model, ok := strings.Cut(backendID, "/")
	if !ok || provider == "" || model == "" {
		return "", "", fmt.Errorf("invalid backend identifier '%s': want provider/model", backendID)
	}
	return provider, model, nil
}

// Router dispatches each call to the generator registered for the
// identifier's provider prefix.
type Router struct {
	mu        sync.RWMutex
	providers map[string]Generator
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{providers: make(map[string]Generator)}
}

// Register binds a provider prefix to a generator
func (r *Router) Register(provider string, g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[provider] = g
}

// Generate implements Generator
func (r *Router) Generate(ctx context.Context, prompt string, media []string, backendID string) (string, error) {
	provider, _, err := SplitID(backendID)
	if err != nil {
		return "", err
	}

	r.mu.RLock()
	g, ok := r.providers[provider]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w '%s'", ErrUnknownProvider, provider)
	}

	return g.Generate(ctx, prompt, media, backendID)
}
