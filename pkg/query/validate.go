package query

import (
	"fmt"
	"regexp"
	"strings"
)

// dangerousKeywords are the forbidden mutating/DDL statement keywords,
// checked as whole words.
var dangerousKeywords = []string{
	"DROP", "DELETE", "TRUNCATE", "ALTER", "INSERT", "UPDATE", "CREATE", "EXEC",
}

var dangerousPattern = regexp.MustCompile(
	`\b(` + strings.Join(dangerousKeywords, "|") + `)\b`)

// ValidateSelect enforces the four safe-SELECT invariants: non-empty,
// single statement, SELECT-only, and free of mutating/DDL keywords.
// Returns nil when sql is safe to execute, or a descriptive error otherwise.
func ValidateSelect(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return fmt.Errorf("query: empty statement")
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") {
		return fmt.Errorf("query: statement must begin with SELECT")
	}
	if !strings.Contains(upper, "FROM") {
		return fmt.Errorf("query: statement must contain FROM")
	}
	if dangerousPattern.MatchString(upper) {
		return fmt.Errorf("query: statement contains a disallowed keyword")
	}
	if !balancedParens(trimmed) {
		return fmt.Errorf("query: statement has unbalanced parentheses")
	}
	return nil
}

func balancedParens(sql string) bool {
	depth := 0
	for _, r := range sql {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			return false
		}
	}
	return depth == 0
}
