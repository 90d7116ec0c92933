package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("{}"), "inline")
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.True(t, cfg.IsDev())
	assert.True(t, cfg.SeedFixtures)
	assert.True(t, cfg.AI.EnableSummary)
	assert.Equal(t, 30*time.Second, cfg.AI.Timeout)
	assert.Equal(t, int64(defaultAIMaxOutputTokens), cfg.AI.MaxOutputTokens)
	assert.Equal(t, 30*time.Minute, cfg.Summary.SurfaceTTL)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Contains(t, cfg.DSN, "tcp(127.0.0.1:3306)/healthconnect")
	assert.Contains(t, cfg.DSN, "parseTime=true")
	assert.Contains(t, cfg.DSN, "charset=utf8mb4")
	assert.NotEmpty(t, cfg.LogDir())
}

func TestParseOverrides(t *testing.T) {
	content := `
port: 8080
env: Production
database:
  host: db.internal
  port: 3307
  user: portal
  name: ehr
  params:
    timeout: 5s
    " ": dropped
redis:
  host: cache.internal
  db: 2
allowed_origins: ["  https://portal.example.com ", ""]
jwt_secret: s3cret
seed_fixtures: false
ai:
  timeout: 5s
  max_output_tokens: 256
  providers:
    - name: primary
      type: OpenAI
      api_key: " sk-test "
      enabled: true
  summary_model:
    provider_id: primary
    model: gpt-4o
summary:
  surface_ttl: 10m
  rate_limit_per_minute: 3
`
	cfg, err := Parse([]byte(content), "inline")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.False(t, cfg.IsDev())
	assert.False(t, cfg.SeedFixtures)
	assert.Equal(t, []string{"https://portal.example.com"}, cfg.AllowedOrigins)
	assert.Contains(t, cfg.DSN, "portal:password@tcp(db.internal:3307)/ehr?")
	assert.Contains(t, cfg.DSN, "timeout=5s")
	assert.Equal(t, "redis://cache.internal:6379/2", cfg.RedisURL)

	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, int64(256), cfg.AI.MaxOutputTokens)
	require.Len(t, cfg.AI.Providers, 1)
	assert.Equal(t, "primary", cfg.AI.Providers[0].ID)
	assert.Equal(t, "sk-test", cfg.AI.Providers[0].APIKey)
	require.NotNil(t, cfg.AI.SummaryModel)
	assert.Equal(t, "gpt-4o", cfg.AI.SummaryModel.Model)

	assert.Equal(t, 10*time.Minute, cfg.Summary.SurfaceTTL)
	assert.Equal(t, 3, cfg.Summary.RateLimitPerMinute)
}

func TestParseConnectionStrings(t *testing.T) {
	content := `
database:
  dsn: "app:pw@tcp(mysql:3306)/hc?parseTime=true"
  host: ignored
redis:
  host: cache
  port: 6380
  password: secret
  db: 1
  tls: true
`
	cfg, err := Parse([]byte(content), "inline")
	require.NoError(t, err)
	assert.Equal(t, "app:pw@tcp(mysql:3306)/hc?parseTime=true", cfg.DSN)
	assert.Equal(t, "rediss://:secret@cache:6380/1", cfg.RedisURL)

	cfg, err = Parse([]byte("redis:\n  url: cache.internal:6379/3\n"), "inline")
	require.NoError(t, err)
	assert.Equal(t, "redis://cache.internal:6379/3", cfg.RedisURL)
}

func TestParseEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil, "inline")
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	for _, content := range []string{
		"mongo_uri: mongodb://localhost\n",
		"database:\n  db_name: ehr\n",
		"tz: UTC\n",
	} {
		_, err := Parse([]byte(content), "inline")
		assert.Error(t, err, content)
	}
}

func TestParseValidation(t *testing.T) {
	cases := map[string]string{
		"port out of range":    "port: 70000\n",
		"negative redis db":    "redis:\n  db: -1\n",
		"bad timeout":          "ai:\n  timeout: soon\n",
		"zero timeout":         "ai:\n  timeout: 0s\n",
		"bad surface ttl":      "summary:\n  surface_ttl: forever\n",
		"negative rate limit":  "summary:\n  rate_limit_per_minute: -2\n",
		"database port bounds": "database:\n  port: 99999\n",
		"zero surface ttl":     "summary:\n  surface_ttl: 0s\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(content), "inline")
			assert.Error(t, err)
		})
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("port: 9100\npaths:\n  logs: /var/log/hc\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "/var/log/hc", cfg.LogDir())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
