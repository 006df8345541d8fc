package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeLLMProviders(t *testing.T) {
	builtin := map[string]LLMProviderConfig{
		"builtin-provider": {
			Type:      LLMProviderTypeAnthropic,
			Model:     "claude-sonnet-4-20250514",
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
		"override-me": {
			Type:      LLMProviderTypeGoogle,
			Model:     "gemini-2.5-flash",
			APIKeyEnv: "GOOGLE_API_KEY",
		},
	}
	user := map[string]LLMProviderConfig{
		"user-provider": {
			Type:      LLMProviderTypeGoogle,
			Model:     "gemini-2.5-pro",
			APIKeyEnv: "GOOGLE_API_KEY",
		},
		"override-me": {
			Type:      LLMProviderTypeAnthropic,
			Model:     "claude-opus-4",
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
	}

	result := mergeLLMProviders(builtin, user)

	assert.Len(t, result, 3)
	assert.Equal(t, "claude-sonnet-4-20250514", result["builtin-provider"].Model)
	assert.Equal(t, "gemini-2.5-pro", result["user-provider"].Model)
	assert.Equal(t, "claude-opus-4", result["override-me"].Model)
	assert.Equal(t, LLMProviderTypeAnthropic, result["override-me"].Type)
}

func TestMergeLLMProviders_EmptyInputs(t *testing.T) {
	t.Run("empty user providers keeps builtin", func(t *testing.T) {
		builtin := map[string]LLMProviderConfig{"p": {Type: LLMProviderTypeGoogle, Model: "m", APIKeyEnv: "K"}}
		result := mergeLLMProviders(builtin, map[string]LLMProviderConfig{})
		assert.Len(t, result, 1)
	})

	t.Run("empty builtin providers keeps user", func(t *testing.T) {
		user := map[string]LLMProviderConfig{"p": {Type: LLMProviderTypeAnthropic, Model: "m", APIKeyEnv: "K"}}
		result := mergeLLMProviders(map[string]LLMProviderConfig{}, user)
		assert.Len(t, result, 1)
	})

	t.Run("both empty yields empty", func(t *testing.T) {
		result := mergeLLMProviders(nil, nil)
		assert.Empty(t, result)
	})
}
