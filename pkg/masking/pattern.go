package masking

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/tarsy-labs/chartpilot/pkg/config"
)

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// resolvedPatterns holds the resolved, deduplicated set of patterns for a
// masking operation.
type resolvedPatterns struct {
	regexPatterns []*CompiledPattern
}

// compileBuiltinPatterns compiles all built-in regex patterns from config.
// Invalid patterns are logged and skipped.
func (s *Service) compileBuiltinPatterns() {
	for name, pattern := range config.GetBuiltinConfig().MaskingPatterns {
		compiled, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			slog.Error("Failed to compile built-in masking pattern, skipping",
				"pattern", name, "error", err)
			continue
		}
		s.patterns[name] = &CompiledPattern{
			Name:        name,
			Regex:       compiled,
			Replacement: pattern.Replacement,
			Description: pattern.Description,
		}
	}
}

// compileCustomPatterns compiles the custom patterns from the service's own
// configuration. Custom patterns are keyed by index to avoid collisions with
// built-in pattern names.
func (s *Service) compileCustomPatterns(custom []config.MaskingPattern) {
	for i, pattern := range custom {
		name := fmt.Sprintf("custom:%d", i)
		compiled, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			slog.Error("Failed to compile custom masking pattern, skipping",
				"pattern", name, "error", err)
			continue
		}
		s.patterns[name] = &CompiledPattern{
			Name:        name,
			Regex:       compiled,
			Replacement: pattern.Replacement,
			Description: pattern.Description,
		}
	}
}

// resolvePatterns expands a MaskingConfig into a deduplicated resolvedPatterns.
func (s *Service) resolvePatterns(cfg *config.MaskingConfig) *resolvedPatterns {
	resolved := &resolvedPatterns{}
	if cfg == nil || !cfg.Enabled {
		return resolved
	}

	seen := make(map[string]bool)

	// 1. Expand pattern_groups → individual pattern names
	for _, groupName := range cfg.PatternGroups {
		groupPatterns, ok := s.patternGroups[groupName]
		if !ok {
			slog.Warn("unknown masking pattern group", "group", groupName)
			continue
		}
		for _, name := range groupPatterns {
			s.addToResolved(resolved, name, seen)
		}
	}

	// 2. Add individual patterns from cfg.Patterns
	for _, name := range cfg.Patterns {
		s.addToResolved(resolved, name, seen)
	}

	// 3. Add custom patterns
	for i := range cfg.CustomPatterns {
		s.addToResolved(resolved, fmt.Sprintf("custom:%d", i), seen)
	}

	return resolved
}

// resolvePatternsFromGroup resolves a single pattern group name into resolvedPatterns.
func (s *Service) resolvePatternsFromGroup(groupName string) *resolvedPatterns {
	resolved := &resolvedPatterns{}

	groupPatterns, ok := s.patternGroups[groupName]
	if !ok {
		return resolved
	}

	seen := make(map[string]bool)
	for _, name := range groupPatterns {
		s.addToResolved(resolved, name, seen)
	}

	return resolved
}

func (s *Service) addToResolved(resolved *resolvedPatterns, name string, seen map[string]bool) {
	if seen[name] {
		return
	}
	cp, ok := s.patterns[name]
	if !ok {
		return
	}
	seen[name] = true
	resolved.regexPatterns = append(resolved.regexPatterns, cp)
}
