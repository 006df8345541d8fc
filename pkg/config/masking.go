package config

// MaskingConfig controls secret redaction of arbitrary customer data values
// before they reach an LLM prompt (pkg/llmgateway requests) or a structured
// log line. Applied module-wide rather than per-server — there is only one
// data source here, not a set of pluggable MCP servers.
type MaskingConfig struct {
	Enabled        bool             `yaml:"enabled"`
	PatternGroups  []string         `yaml:"pattern_groups,omitempty"`
	Patterns       []string         `yaml:"patterns,omitempty"`
	CustomPatterns []MaskingPattern `yaml:"custom_patterns,omitempty"`
}

// MaskingPattern defines a regex-based masking pattern.
type MaskingPattern struct {
	Pattern     string `yaml:"pattern" validate:"required"`
	Replacement string `yaml:"replacement" validate:"required"`
	Description string `yaml:"description,omitempty"`
}

// DefaultMaskingConfig returns the built-in masking defaults: on, using the
// "security" pattern group.
func DefaultMaskingConfig() *MaskingConfig {
	return &MaskingConfig{
		Enabled:       true,
		PatternGroups: []string{"security"},
	}
}
