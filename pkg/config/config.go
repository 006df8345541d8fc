package config

// Config is the umbrella configuration object returned by Initialize and
// threaded through cmd/chartpilot's wiring.
type Config struct {
	configDir string

	Defaults            *Defaults
	Registry            *RegistryConfig
	Masking             *MaskingConfig
	API                 *APIConfig
	Notifications       *NotificationsConfig
	LLMProviderRegistry *LLMProviderRegistry
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetLLMProvider retrieves an LLM provider configuration by name.
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviderRegistry.Get(name)
}

// ConfigStats contains statistics about loaded configuration, surfaced in
// startup logging.
type ConfigStats struct {
	LLMProviders int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		LLMProviders: c.LLMProviderRegistry.Len(),
	}
}
