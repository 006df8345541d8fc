package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// ChartpilotYAMLConfig represents the complete chartpilot.yaml file structure.
type ChartpilotYAMLConfig struct {
	API           *APIConfig           `yaml:"api"`
	Registry      *RegistryConfig      `yaml:"registry"`
	Masking       *MaskingConfig       `yaml:"masking"`
	Defaults      *Defaults            `yaml:"defaults"`
	Notifications *NotificationsConfig `yaml:"notifications"`
}

// LLMProvidersYAMLConfig represents the complete llm-providers.yaml file structure.
type LLMProvidersYAMLConfig struct {
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load YAML files from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in + user-defined LLM providers
//  5. Apply default values for anything unset
//  6. Validate all configuration
//  7. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully", "llm_providers", stats.LLMProviders)

	return cfg, nil
}

// load is the internal loader (not exported)
func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	yamlCfg, err := loader.loadChartpilotYAML()
	if err != nil {
		return nil, NewLoadError("chartpilot.yaml", err)
	}

	llmProviders, err := loader.loadLLMProvidersYAML()
	if err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	builtin := GetBuiltinConfig()

	llmProvidersMerged := mergeLLMProviders(builtin.LLMProviders, llmProviders)
	llmProviderRegistry := NewLLMProviderRegistry(llmProvidersMerged)

	defaults := yamlCfg.Defaults
	if defaults == nil {
		defaults = &Defaults{}
	}
	if defaults.LLMProvider == "" {
		defaults.LLMProvider = "anthropic-default"
	}

	registryCfg := DefaultRegistryConfig()
	if yamlCfg.Registry != nil {
		if err := mergo.Merge(registryCfg, yamlCfg.Registry, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge registry config: %w", err)
		}
	}

	maskingCfg := DefaultMaskingConfig()
	if yamlCfg.Masking != nil {
		maskingCfg = yamlCfg.Masking
	}

	apiCfg := DefaultAPIConfig()
	if yamlCfg.API != nil {
		if err := mergo.Merge(apiCfg, yamlCfg.API, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge API config: %w", err)
		}
	}

	notificationsCfg := DefaultNotificationsConfig()
	if yamlCfg.Notifications != nil {
		if err := mergo.Merge(notificationsCfg, yamlCfg.Notifications, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge notifications config: %w", err)
		}
	}

	return &Config{
		configDir:           configDir,
		Defaults:            defaults,
		Registry:            registryCfg,
		Masking:             maskingCfg,
		API:                 apiCfg,
		Notifications:       notificationsCfg,
		LLMProviderRegistry: llmProviderRegistry,
	}, nil
}

// validate performs comprehensive validation on loaded configuration
func validate(cfg *Config) error {
	validator := NewValidator(cfg)
	return validator.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadChartpilotYAML() (*ChartpilotYAMLConfig, error) {
	var cfg ChartpilotYAMLConfig
	if err := l.loadYAML("chartpilot.yaml", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (l *configLoader) loadLLMProvidersYAML() (map[string]LLMProviderConfig, error) {
	var cfg LLMProvidersYAMLConfig
	cfg.LLMProviders = make(map[string]LLMProviderConfig)

	if err := l.loadYAML("llm-providers.yaml", &cfg); err != nil {
		return nil, err
	}

	return cfg.LLMProviders, nil
}
