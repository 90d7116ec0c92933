package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content, path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML content on top of the defaults. source only labels errors.
func Parse(content []byte, source string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config file %q: %w", source, err)
	}
	normalize(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config file %q: %w", source, err)
	}
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Database: DatabaseConfig{
			Host:     defaultDBHost,
			Port:     defaultDBPort,
			User:     defaultDBUser,
			Password: defaultDBPassword,
			Name:     defaultDBName,
			Charset:  defaultDBCharset,
		},
		Redis: RedisConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
		},
		SeedFixtures: true,
		AI: AIConfig{
			EnableSummary:   true,
			Timeout:         defaultAITimeout,
			MaxOutputTokens: defaultAIMaxOutputTokens,
		},
		Summary: SummaryRuntimeConfig{
			SurfaceTTL:         defaultSurfaceTTL,
			RateLimitPerMinute: defaultSummaryRatePerMin,
		},
	}
}

func validate(cfg *AppConfig) error {
	switch {
	case !validPort(cfg.Port):
		return fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	case cfg.Database.DSN == "" && !validPort(cfg.Database.Port):
		return fmt.Errorf("invalid database.port %d, expected 1-65535", cfg.Database.Port)
	case cfg.Database.DSN == "" && cfg.Database.Name == "":
		return errors.New("database.name is required without database.dsn")
	case cfg.Redis.URL == "" && !validPort(cfg.Redis.Port):
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", cfg.Redis.Port)
	case cfg.Redis.DB < 0:
		return fmt.Errorf("invalid redis.db %d, expected >= 0", cfg.Redis.DB)
	case cfg.AI.Timeout <= 0:
		return fmt.Errorf("invalid ai.timeout %s, expected > 0", cfg.AI.Timeout)
	case cfg.AI.MaxOutputTokens <= 0:
		return fmt.Errorf("invalid ai.max_output_tokens %d, expected > 0", cfg.AI.MaxOutputTokens)
	case cfg.Summary.SurfaceTTL <= 0:
		return fmt.Errorf("invalid summary.surface_ttl %s, expected > 0", cfg.Summary.SurfaceTTL)
	case cfg.Summary.RateLimitPerMinute < 0:
		return fmt.Errorf("invalid summary.rate_limit_per_minute %d, expected >= 0", cfg.Summary.RateLimitPerMinute)
	}
	return nil
}

func validPort(p int) bool { return p >= 1 && p <= 65535 }

func (c *AppConfig) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// LogDir is paths.logs, or "logs", made absolute against the working directory.
func (c *AppConfig) LogDir() string {
	dir := c.Paths.Logs
	if dir == "" {
		dir = defaultLogDir
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
