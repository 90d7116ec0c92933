package config

import "time"

// AppConfig is the startup configuration. Parse decodes the YAML file straight
// onto the defaults, so absent keys keep their default value.
type AppConfig struct {
	Port           int                  `yaml:"port"`
	Env            string               `yaml:"env"` // "development" | "production"
	Database       DatabaseConfig       `yaml:"database"`
	Redis          RedisConfig          `yaml:"redis"`
	Paths          PathsConfig          `yaml:"paths"`
	AllowedOrigins []string             `yaml:"allowed_origins"`
	JWTSecret      string               `yaml:"jwt_secret"`
	Timezone       string               `yaml:"timezone"`
	SeedFixtures   bool                 `yaml:"seed_fixtures"`
	AI             AIConfig             `yaml:"ai"`
	Summary        SummaryRuntimeConfig `yaml:"summary"`

	// Resolved connection strings; HC_DSN and HC_REDIS_URL replace them.
	DSN      string `yaml:"-"`
	RedisURL string `yaml:"-"`
}

// DatabaseConfig is either a full dsn or the parts of one.
type DatabaseConfig struct {
	DSN      string            `yaml:"dsn"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	User     string            `yaml:"user"`
	Password string            `yaml:"password"`
	Name     string            `yaml:"name"`
	Charset  string            `yaml:"charset"`
	Params   map[string]string `yaml:"params"`
}

// RedisConfig is either a url or the parts of one.
type RedisConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

type PathsConfig struct {
	Logs string `yaml:"logs"`
}

// AIConfig describes the generative-text providers available to the summary flow.
type AIConfig struct {
	Providers       []AIProvider       `yaml:"providers"`
	SummaryModel    *AIModelAssignment `yaml:"summary_model,omitempty"`
	EnableSummary   bool               `yaml:"enable_summary"`
	Timeout         time.Duration      `yaml:"timeout"`
	MaxOutputTokens int64              `yaml:"max_output_tokens"`
}

type AIModelAssignment struct {
	ProviderID string `yaml:"provider_id"`
	Model      string `yaml:"model"`
}

type AIProvider struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	Type         string `yaml:"type"` // OpenAI | OpenAI-Compatible | Anthropic | OpenRouter
	APIKey       string `yaml:"api_key"`
	Endpoint     string `yaml:"endpoint,omitempty"`
	DefaultModel string `yaml:"default_model"`
	Enabled      bool   `yaml:"enabled"`
}

// SummaryRuntimeConfig tunes the per-surface summary orchestrators.
type SummaryRuntimeConfig struct {
	SurfaceTTL         time.Duration `yaml:"surface_ttl"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
}
