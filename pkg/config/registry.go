package config

import "time"

// RegistryConfig controls the job registry's TTL eviction (pkg/registry).
type RegistryConfig struct {
	// JobTTL is how long a terminal job is retained before the sweep
	// service evicts it.
	JobTTL time.Duration `yaml:"job_ttl"`

	// SweepInterval is how often the sweep loop checks for evictable jobs.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// DefaultRegistryConfig returns the built-in registry defaults, matching
// pkg/registry's own DefaultTTL/DefaultSweepInterval constants.
func DefaultRegistryConfig() *RegistryConfig {
	return &RegistryConfig{
		JobTTL:        24 * time.Hour,
		SweepInterval: 5 * time.Minute,
	}
}
