package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agent-api/core"
	"github.com/agent-api/core/agent"
	"github.com/agent-api/core/agent/bootstrap"
	"github.com/agent-api/ollama"
	"github.com/go-logr/logr"
)

// ProviderOllama is the identifier prefix routed to a local Ollama server
const ProviderOllama = "ollama"

const (
	DefaultOllamaBaseURL = "http://localhost"
	DefaultOllamaPort    = 11434
)

const ollamaCheckTimeout = 5 * time.Second

const ollamaSystemPrompt = "You are a visual analysis assistant who writes short, vivid prompts for text-to-video models. Follow the output format requested by the user exactly."

// OllamaOpts configures the Ollama generator. The agent-api provider always
// talks to localhost:11434; BaseURL and Port only steer the reachability check.
type OllamaOpts struct {
	Logger  *slog.Logger
	BaseURL string
	Port    int
}

// OllamaGenerator runs a vision model through the agent-api Ollama provider.
// Calls are serialized since a local server usually holds one model in VRAM.
type OllamaGenerator struct {
	opts   OllamaOpts
	logger logr.Logger
	mu     sync.Mutex

	checkMu   sync.Mutex
	reachable bool
}

// NewOllamaGenerator creates an Ollama generator
func NewOllamaGenerator(opts OllamaOpts) *OllamaGenerator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOllamaBaseURL
	}
	if opts.Port == 0 {
		opts.Port = DefaultOllamaPort
	}
	return &OllamaGenerator{
		opts:   opts,
		logger: logr.FromSlogHandler(opts.Logger.With("provider", ProviderOllama).Handler()),
	}
}

// checkRunning verifies that the Ollama server answers. Only success is
// remembered, so a server started mid-run is picked up by later calls.
func (g *OllamaGenerator) checkRunning(ctx context.Context) error {
	g.checkMu.Lock()
	defer g.checkMu.Unlock()
	if g.reachable {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ollamaCheckTimeout)
	defer cancel()

	url := fmt.Sprintf("%s:%d/api/tags", strings.TrimRight(g.opts.BaseURL, "/"), g.opts.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama is not reachable at %s: %w", url, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned %s for %s", resp.Status, url)
	}

	g.reachable = true
	return nil
}

// newAgent builds a fresh agent so no conversation carries over between pairs
func (g *OllamaGenerator) newAgent(ctx context.Context, model string) (*agent.Agent, error) {
	provider := ollama.NewProvider(&ollama.ProviderOpts{
		Logger:  &g.logger,
		BaseURL: g.opts.BaseURL,
		Port:    g.opts.Port,
	})
	if err := provider.UseModel(ctx, &core.Model{ID: model}); err != nil {
		return nil, fmt.Errorf("failed to select model %s: %w", model, err)
	}

	return agent.NewAgent(
		bootstrap.WithProvider(provider),
		bootstrap.WithSystemPrompt(ollamaSystemPrompt),
		bootstrap.WithLogger(&g.logger),
		bootstrap.WithMaxSteps(2),
	)
}

// Generate implements Generator
func (g *OllamaGenerator) Generate(ctx context.Context, prompt string, media []string, backendID string) (string, error) {
	if err := g.checkRunning(ctx); err != nil {
		return "", err
	}

	model := strings.TrimPrefix(backendID, ProviderOllama+"/")

	g.mu.Lock()
	defer g.mu.Unlock()

	a, err := g.newAgent(ctx, model)
	if err != nil {
		return "", fmt.Errorf("failed to create ollama agent: %w", err)
	}

	// the provider drops system messages, so the instructions lead the input
	input := ollamaSystemPrompt + "\n\n" + prompt
	response, err := a.Run(ctx, runOptions(input, media)...)
	if err != nil {
		return "", err
	}

	// the last message is the model's reply, not the prompt
	reply := response.Pop()
	if reply == nil || reply.Role != core.AssistantMessageRole || reply.Content == "" {
		return "", fmt.Errorf("%s %s: %w", ProviderOllama, model, ErrEmptyResponse)
	}
	return reply.Content, nil
}

// runOptions lists the input option followed by one image option per path
func runOptions(input string, paths []string) []agent.RunOptionFunc {
	opts := []agent.RunOptionFunc{agent.WithInput(input)}
	for _, p := range paths {
		opts = append(opts, agent.WithImagePath(p))
	}
	return opts
}
