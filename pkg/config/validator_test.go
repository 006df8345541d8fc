package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	return &Config{
		configDir: "/etc/chartpilot",
		Defaults:  &Defaults{LLMProvider: "anthropic-default"},
		Registry:  &RegistryConfig{JobTTL: 24 * time.Hour, SweepInterval: 5 * time.Minute},
		Masking:   DefaultMaskingConfig(),
		API:       &APIConfig{ListenAddr: ":8080", AllowedOrigins: []string{"*"}},
		LLMProviderRegistry: NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"anthropic-default": {Type: LLMProviderTypeAnthropic, Model: "claude-sonnet-4-20250514", APIKeyEnv: "ANTHROPIC_API_KEY"},
		}),
	}
}

func TestValidator_ValidateAll_Valid(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, NewValidator(cfg).ValidateAll())
}

func TestValidator_ValidateLLMProviders(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.LLMProviderRegistry = NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"bad": {Type: "not-a-real-type", Model: "m", APIKeyEnv: "ANTHROPIC_API_KEY"},
		})
		err := NewValidator(cfg).ValidateAll()
		assert.Error(t, err)
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.LLMProviderRegistry = NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"bad": {Type: LLMProviderTypeAnthropic, APIKeyEnv: "ANTHROPIC_API_KEY"},
		})
		assert.Error(t, NewValidator(cfg).ValidateAll())
	})

	t.Run("missing api_key_env", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.LLMProviderRegistry = NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"bad": {Type: LLMProviderTypeAnthropic, Model: "m"},
		})
		assert.Error(t, NewValidator(cfg).ValidateAll())
	})

	t.Run("api_key_env not set in environment", func(t *testing.T) {
		cfg := validConfig(t)
		os.Unsetenv("UNSET_KEY_VAR")
		cfg.LLMProviderRegistry = NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"bad": {Type: LLMProviderTypeGoogle, Model: "m", APIKeyEnv: "UNSET_KEY_VAR"},
		})
		assert.Error(t, NewValidator(cfg).ValidateAll())
	})
}

func TestValidator_ValidateRegistry(t *testing.T) {
	t.Run("zero job ttl", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Registry.JobTTL = 0
		assert.Error(t, NewValidator(cfg).ValidateAll())
	})

	t.Run("zero sweep interval", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Registry.SweepInterval = 0
		assert.Error(t, NewValidator(cfg).ValidateAll())
	})
}

func TestValidator_ValidateAPI(t *testing.T) {
	cfg := validConfig(t)
	cfg.API.ListenAddr = ""
	assert.Error(t, NewValidator(cfg).ValidateAll())
}

func TestValidator_ValidateDefaults(t *testing.T) {
	t.Run("references unknown provider", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Defaults.LLMProvider = "does-not-exist"
		err := NewValidator(cfg).ValidateAll()
		assert.ErrorIs(t, err, ErrLLMProviderNotFound)
	})

	t.Run("empty default provider is allowed", func(t *testing.T) {
		cfg := validConfig(t)
		cfg.Defaults.LLMProvider = ""
		assert.NoError(t, NewValidator(cfg).ValidateAll())
	})
}
