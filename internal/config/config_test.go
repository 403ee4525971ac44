package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaultsWhenEnvironmentEmpty(t *testing.T) {
	for _, key := range []string{envOpenAIKey, envLLMAPIKey, envModelType, envModelName, envBaseURL, envBaseDir, envMaxRetries, envSandboxTO, envSandboxCap} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.False(t, cfg.HasLLMProvider())
	assert.Equal(t, defaultBaseDir, cfg.BaseDir)
	assert.Equal(t, defaultMaxRetries, cfg.MaxRetries)
	assert.Equal(t, time.Duration(defaultSandboxTimeout), cfg.SandboxTimeout)
	assert.Equal(t, defaultSandboxOutputCap, cfg.SandboxOutputCap)
}

func TestLoadPrefersLLMAPIKeyOverOpenAIKey(t *testing.T) {
	t.Setenv(envOpenAIKey, "sk-openai")
	t.Setenv(envLLMAPIKey, "sk-llm")

	cfg := Load()

	assert.True(t, cfg.HasLLMProvider())
	assert.Equal(t, "sk-llm", cfg.LLM.APIKey)
}

func TestLoadFallsBackToOpenAIKey(t *testing.T) {
	t.Setenv(envLLMAPIKey, "")
	t.Setenv(envOpenAIKey, "sk-openai")

	cfg := Load()

	assert.Equal(t, "sk-openai", cfg.LLM.APIKey)
}

func TestLoadParsesSandboxOverrides(t *testing.T) {
	t.Setenv(envSandboxTO, "5")
	t.Setenv(envSandboxCap, "1024")

	cfg := Load()

	assert.Equal(t, 5*time.Second, cfg.SandboxTimeout)
	assert.Equal(t, 1024, cfg.SandboxOutputCap)
}

func TestLoadIgnoresInvalidIntegers(t *testing.T) {
	t.Setenv(envMaxRetries, "not-a-number")

	cfg := Load()

	assert.Equal(t, defaultMaxRetries, cfg.MaxRetries)
}
