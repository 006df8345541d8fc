package config

// LLMProviderType defines which pkg/llmgateway backend a provider selects.
type LLMProviderType string

const (
	// LLMProviderTypeAnthropic selects anthropic-sdk-go.
	LLMProviderTypeAnthropic LLMProviderType = "anthropic"
	// LLMProviderTypeGoogle selects google.golang.org/genai.
	LLMProviderTypeGoogle LLMProviderType = "google"
)

// IsValid checks if the LLM provider type is valid.
func (t LLMProviderType) IsValid() bool {
	switch t {
	case LLMProviderTypeAnthropic, LLMProviderTypeGoogle:
		return true
	default:
		return false
	}
}
