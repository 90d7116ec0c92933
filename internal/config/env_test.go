package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("HC_DSN", "u:p@tcp(db:3306)/hc")
	t.Setenv("HC_JWT_SECRET", "from-env")
	t.Setenv("HC_OPENAI_API_KEY", "sk-openai")
	t.Setenv("HC_ANTHROPIC_API_KEY", "sk-ant")

	cfg := defaultAppConfig()
	cfg.AI.Providers = []AIProvider{
		{ID: "oa", Type: "OpenAI"},
		{ID: "an", Type: "Anthropic"},
		{ID: "or", Type: "OpenRouter"},
		{ID: "keep", Type: "OpenAI", APIKey: "yaml-key"},
	}
	require.NoError(t, ApplyEnv(&cfg))

	assert.Equal(t, "u:p@tcp(db:3306)/hc", cfg.DSN)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "sk-openai", cfg.AI.Providers[0].APIKey)
	assert.Equal(t, "sk-ant", cfg.AI.Providers[1].APIKey)
	assert.Empty(t, cfg.AI.Providers[2].APIKey)
	assert.Equal(t, "yaml-key", cfg.AI.Providers[3].APIKey)
}
