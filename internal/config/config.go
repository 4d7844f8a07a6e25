package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/bdougie/videoextend/internal/backend"
	"github.com/bdougie/videoextend/internal/prompt"
)

// Config holds the run settings. Environment variables provide the
// defaults and command line flags override them.
type Config struct {
	Backends         []string      `env:"VIDEOEXTEND_BACKENDS"          envSeparator:","`
	Template         string        `env:"VIDEOEXTEND_TEMPLATE"          envDefault:"video"`
	TemplateDir      string        `env:"VIDEOEXTEND_TEMPLATE_DIR"`
	Workers          int           `env:"VIDEOEXTEND_WORKERS"           envDefault:"4"`
	ParallelBackends bool          `env:"VIDEOEXTEND_PARALLEL_BACKENDS" envDefault:"false"`
	BackendTimeout   time.Duration `env:"VIDEOEXTEND_BACKEND_TIMEOUT"   envDefault:"2m"`
	RateInterval     time.Duration `env:"VIDEOEXTEND_RATE_INTERVAL"     envDefault:"0s"`
	MediaCacheTTL    time.Duration `env:"VIDEOEXTEND_MEDIA_CACHE_TTL"   envDefault:"10m"`
	LogFile          string        `env:"VIDEOEXTEND_LOG_FILE"          envDefault:"videoextend.log"`
	MetricsFile      string        `env:"VIDEOEXTEND_METRICS_FILE"`

	OpenRouterAPIKey  string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL"`
	GeminiAPIKey      string `env:"GEMINI_API_KEY"`
	OllamaBaseURL     string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost"`
	OllamaPort        int    `env:"OLLAMA_PORT"     envDefault:"11434"`
	LLMUserPath       string `env:"LLM_USER_PATH"`
}

// Load reads the config from the environment and fills derived defaults
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills values that depend on other settings
func (c *Config) applyDefaults() {
	if len(c.Backends) == 0 {
		c.Backends = append([]string(nil), backend.DefaultBackends...)
	}
	if c.TemplateDir == "" {
		c.TemplateDir = prompt.DefaultTemplateDir(c.LLMUserPath)
	}
}

// Validate rejects settings a run cannot start with
func (c *Config) Validate() error {
	var errs []error
	if len(c.Backends) == 0 {
		errs = append(errs, errors.New("at least one backend is required"))
	}
	for _, id := range c.Backends {
		if strings.TrimSpace(id) == "" {
			errs = append(errs, errors.New("backend identifiers must not be empty"))
			break
		}
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.BackendTimeout <= 0 {
		errs = append(errs, fmt.Errorf("backend timeout must be positive, got %s", c.BackendTimeout))
	}
	if c.RateInterval < 0 {
		errs = append(errs, fmt.Errorf("rate interval must not be negative, got %s", c.RateInterval))
	}
	if c.MediaCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("media cache ttl must be positive, got %s", c.MediaCacheTTL))
	}
	if c.Template == "" {
		errs = append(errs, errors.New("template name is required"))
	}
	return errors.Join(errs...)
}
