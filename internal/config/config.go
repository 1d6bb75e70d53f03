package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Recipe generator backends.
const (
	RecipeBackendNone   = "none"
	RecipeBackendClaude = "claude"
	RecipeBackendOllama = "ollama"
)

type Config struct {
	ListenAddr    string        `env:"LISTEN_ADDR"     envDefault:":8080"`
	DBPath        string        `env:"DB_PATH"         envDefault:"/data/wasteless.db"`
	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL"     envDefault:"24h"`
	SecureCookies bool          `env:"SECURE_COOKIES"  envDefault:"false"`
	RecipeBackend string        `env:"RECIPE_BACKEND"  envDefault:"none"`
	RecipeTimeout time.Duration `env:"RECIPE_TIMEOUT"  envDefault:"20s"`
	OllamaHost    string        `env:"OLLAMA_HOST"     envDefault:"http://localhost:11434"`
	OllamaModel   string        `env:"OLLAMA_MODEL"    envDefault:"llama3"`
	ClaudeAPIKey  string        `env:"CLAUDE_API_KEY"`
	ClaudeModel   string        `env:"CLAUDE_MODEL"    envDefault:"claude-opus-4-6"`
	LogLevel      string        `env:"LOG_LEVEL"       envDefault:"info"`
	LogFile       string        `env:"LOG_FILE"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.RecipeBackend {
	case RecipeBackendNone, RecipeBackendOllama:
	case RecipeBackendClaude:
		if c.ClaudeAPIKey == "" {
			return fmt.Errorf("CLAUDE_API_KEY is required when RECIPE_BACKEND=claude")
		}
	default:
		return fmt.Errorf("unknown RECIPE_BACKEND %q", c.RecipeBackend)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	return nil
}
