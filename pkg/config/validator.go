package config

import (
	"fmt"
	"os"
)

// Validator validates configuration comprehensively with clear error messages
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast - stops at first error)
func (v *Validator) ValidateAll() error {
	if err := v.validateLLMProviders(); err != nil {
		return fmt.Errorf("LLM provider validation failed: %w", err)
	}

	if err := v.validateRegistry(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	if err := v.validateAPI(); err != nil {
		return fmt.Errorf("API validation failed: %w", err)
	}

	if err := v.validateDefaults(); err != nil {
		return fmt.Errorf("defaults validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateLLMProviders() error {
	for name, provider := range v.cfg.LLMProviderRegistry.GetAll() {
		if !provider.Type.IsValid() {
			return NewValidationError("llm_provider", name, "type", fmt.Errorf("invalid provider type: %s", provider.Type))
		}
		if provider.Model == "" {
			return NewValidationError("llm_provider", name, "model", fmt.Errorf("model required"))
		}
		if provider.APIKeyEnv == "" {
			return NewValidationError("llm_provider", name, "api_key_env", ErrMissingRequiredField)
		}
		if value := os.Getenv(provider.APIKeyEnv); value == "" {
			return NewValidationError("llm_provider", name, "api_key_env", fmt.Errorf("environment variable %s is not set", provider.APIKeyEnv))
		}
	}
	return nil
}

func (v *Validator) validateRegistry() error {
	r := v.cfg.Registry
	if r == nil {
		return fmt.Errorf("registry configuration is nil")
	}
	if r.JobTTL <= 0 {
		return fmt.Errorf("job_ttl must be positive, got %v", r.JobTTL)
	}
	if r.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive, got %v", r.SweepInterval)
	}
	return nil
}

func (v *Validator) validateAPI() error {
	a := v.cfg.API
	if a == nil {
		return fmt.Errorf("API configuration is nil")
	}
	if a.ListenAddr == "" {
		return NewValidationError("api", "", "listen_addr", ErrMissingRequiredField)
	}
	return nil
}

func (v *Validator) validateDefaults() error {
	d := v.cfg.Defaults
	if d == nil {
		return fmt.Errorf("defaults configuration is nil")
	}
	if d.LLMProvider != "" && !v.cfg.LLMProviderRegistry.Has(d.LLMProvider) {
		return NewValidationError("defaults", "", "llm_provider", fmt.Errorf("%w: %s", ErrLLMProviderNotFound, d.LLMProvider))
	}
	return nil
}
