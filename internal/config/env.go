package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// envOverrides keeps secrets out of the YAML file.
type envOverrides struct {
	DSN              string `env:"HC_DSN"`
	RedisURL         string `env:"HC_REDIS_URL"`
	JWTSecret        string `env:"HC_JWT_SECRET"`
	OpenAIAPIKey     string `env:"HC_OPENAI_API_KEY"`
	AnthropicAPIKey  string `env:"HC_ANTHROPIC_API_KEY"`
	OpenRouterAPIKey string `env:"HC_OPENROUTER_API_KEY"`
}

// ApplyEnv overlays HC_* environment variables onto cfg. Provider keys only
// fill providers whose api_key is empty.
func ApplyEnv(cfg *AppConfig) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	if v := strings.TrimSpace(o.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(o.RedisURL); v != "" {
		cfg.RedisURL = v
	}
	if v := strings.TrimSpace(o.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	for i := range cfg.AI.Providers {
		p := &cfg.AI.Providers[i]
		if strings.TrimSpace(p.APIKey) != "" {
			continue
		}
		switch providerKind(p.Type) {
		case "anthropic":
			p.APIKey = strings.TrimSpace(o.AnthropicAPIKey)
		case "openrouter":
			p.APIKey = strings.TrimSpace(o.OpenRouterAPIKey)
		default:
			p.APIKey = strings.TrimSpace(o.OpenAIAPIKey)
		}
	}
	return nil
}

func providerKind(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "")
}
