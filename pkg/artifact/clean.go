package artifact

import (
	"regexp"
	"strings"
)

var (
	strayImportPattern   = regexp.MustCompile(`import\s+.*?from\s+['"][^'"]+['"];?\s*`)
	exportDefaultPattern = regexp.MustCompile(`(?m)export\s+default\s+\w+;?\s*$`)
	jsxSpacingPattern    = regexp.MustCompile(`>\s*<`)
	excessBlankPattern   = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// cleanComponentCode normalizes LLM-generated component code: strip any
// stray import/export statements the model added despite instructions,
// tidy JSX spacing, and make sure the component is properly terminated.
func cleanComponentCode(code string) string {
	cleaned := strayImportPattern.ReplaceAllString(code, "")
	cleaned = exportDefaultPattern.ReplaceAllString(cleaned, "")
	cleaned = jsxSpacingPattern.ReplaceAllString(cleaned, ">\n<")
	cleaned = excessBlankPattern.ReplaceAllString(cleaned, "\n\n")

	trimmed := strings.TrimSpace(cleaned)
	switch {
	case strings.HasSuffix(trimmed, "};"):
		// already terminated
	case strings.HasSuffix(trimmed, "}"):
		trimmed += ";"
	default:
		trimmed += "\n};"
	}
	return trimmed
}
