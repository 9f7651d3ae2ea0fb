package config_test

import (
	"testing"
	"time"
	"tldrgram/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HF_API_TOKEN", "hf_token")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "hf_token", cfg.Credential.Value())
	assert.Equal(t, config.ProviderHuggingFace, cfg.LLM.Provider)
	assert.Equal(t, "mistralai/Mistral-7B-Instruct-v0.3", cfg.LLM.Model)
	assert.Equal(t, int64(150), cfg.LLM.MaxOutputTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, 60*time.Second, cfg.LLM.Timeout)
	assert.False(t, cfg.Web.InsecureSkipVerify)
	assert.Equal(t, config.DefaultUserAgent, cfg.Web.UserAgent)
	assert.Equal(t, config.FormatText, cfg.Web.Format)
	assert.Equal(t, []string{"en"}, cfg.YouTube.Languages)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HF_API_TOKEN", "")
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("LLM_MAX_OUTPUT_TOKENS", "512")
	t.Setenv("WEB_INSECURE_SKIP_VERIFY", "true")
	t.Setenv("WEB_FORMAT", "markdown")
	t.Setenv("YOUTUBE_LANGUAGES", "de, en ,")
	t.Setenv("ALLOWED_USERS", "1,2")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, int64(512), cfg.LLM.MaxOutputTokens)
	assert.True(t, cfg.Web.InsecureSkipVerify)
	assert.Equal(t, config.FormatMarkdown, cfg.Web.Format)
	assert.Equal(t, []string{"de", "en"}, cfg.YouTube.Languages)
	assert.Equal(t, []int64{1, 2}, cfg.Bot.AllowedUsers)
	assert.True(t, cfg.Credential.Blank())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"Unknown provider", "LLM_PROVIDER", "ollama"},
		{"Unknown format", "WEB_FORMAT", "pdf"},
		{"Zero max tokens", "LLM_MAX_OUTPUT_TOKENS", "0"},
		{"Malformed duration", "WEB_TIMEOUT", "soon"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Setenv(test.key, test.value)

			_, err := config.Load()
			require.Error(t, err)
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
}
