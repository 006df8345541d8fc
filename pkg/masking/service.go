package masking

import (
	"log/slog"
	"sync"

	"github.com/tarsy-labs/chartpilot/pkg/config"
)

// Service redacts secret-shaped substrings — API keys, passwords, tokens,
// emails, certificates, cloud credentials — from arbitrary text before it
// reaches an LLM prompt or a structured log line. Created once at startup
// from the resolved MaskingConfig, then optionally recompiled in place by
// Reload when the config directory's Watcher fires; every accessor takes
// mu so a reload racing with an in-flight Mask call never sees half-updated
// pattern state.
type Service struct {
	mu            sync.RWMutex
	cfg           *config.MaskingConfig
	patterns      map[string]*CompiledPattern
	patternGroups map[string][]string
}

// NewService creates a masking service with compiled patterns. All patterns
// are compiled eagerly at creation time; invalid patterns are logged and
// skipped rather than failing startup.
func NewService(cfg *config.MaskingConfig) *Service {
	if cfg == nil {
		cfg = config.DefaultMaskingConfig()
	}

	s := &Service{
		patternGroups: config.GetBuiltinConfig().PatternGroups,
	}
	s.compile(cfg)

	return s
}

// compile (re)builds the pattern table for cfg. Callers must hold mu for
// writing.
func (s *Service) compile(cfg *config.MaskingConfig) {
	s.cfg = cfg
	s.patterns = make(map[string]*CompiledPattern)
	s.compileBuiltinPatterns()
	s.compileCustomPatterns(cfg.CustomPatterns)

	slog.Info("masking service patterns compiled",
		"enabled", cfg.Enabled,
		"compiled_patterns", len(s.patterns))
}

// Reload recompiles the service's patterns from cfg, replacing whatever was
// loaded at construction or the previous Reload. Called from cmd/chartpilot's
// config Watcher callback when chartpilot.yaml changes on disk.
func (s *Service) Reload(cfg *config.MaskingConfig) {
	if cfg == nil {
		cfg = config.DefaultMaskingConfig()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.compile(cfg)
}

// Mask redacts secret-shaped substrings from data using the service's own
// configured pattern groups, individual patterns, and custom patterns.
// Returns data unchanged if masking is disabled, data is empty, or no
// patterns resolve.
func (s *Service) Mask(data string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.cfg.Enabled || data == "" {
		return data
	}

	resolved := s.resolvePatterns(s.cfg)
	if len(resolved.regexPatterns) == 0 {
		return data
	}

	masked := data
	for _, pattern := range resolved.regexPatterns {
		masked = pattern.Regex.ReplaceAllString(masked, pattern.Replacement)
	}
	return masked
}

// MaskWithGroup redacts data using only the named pattern group, ignoring the
// service's own configured groups and patterns. Used where a call site needs
// a stricter or looser sweep than the default — e.g. log output vs. prompts
// sent to an LLM provider.
func (s *Service) MaskWithGroup(data, groupName string) string {
	if data == "" {
		return data
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	resolved := s.resolvePatternsFromGroup(groupName)
	if len(resolved.regexPatterns) == 0 {
		return data
	}

	masked := data
	for _, pattern := range resolved.regexPatterns {
		masked = pattern.Regex.ReplaceAllString(masked, pattern.Replacement)
	}
	return masked
}
