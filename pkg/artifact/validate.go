package artifact

import (
	"fmt"
	"regexp"
	"strings"
)

const minCodeLength = 50

// componentDeclPattern matches a parameterless functional-component
// declaration: const Name = () => {
var componentDeclPattern = regexp.MustCompile(`const\s+([A-Z]\w*)\s*=\s*\(\s*\)\s*=>\s*\{`)

// renderExpressionPattern looks for a return statement followed eventually
// by JSX element syntax, i.e. a render expression.
var renderExpressionPattern = regexp.MustCompile(`(?s)return\s*\(.*<\w+`)

var terminatingBracePattern = regexp.MustCompile(`\}\s*;?\s*$`)

// dangerousPatterns are forbidden constructs: DOM/eval escape hatches that
// let generated code execute arbitrary script or bypass React's renderer.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)eval\s*\(`),
	regexp.MustCompile(`(?i)new\s+Function\s*\(`),
	regexp.MustCompile(`(?i)document\.write`),
	regexp.MustCompile(`(?i)innerHTML\s*=`),
	regexp.MustCompile(`(?i)dangerouslySetInnerHTML`),
	regexp.MustCompile(`(?i)__html`),
}

// Validate checks artifact_code against the four acceptance rules (minimum
// length, declared functional component, a JSX render expression, and no
// dangerous constructs) and returns every violation found (nil/empty means
// the code is acceptable).
// artifactName, when non-empty, must match the component's declared name.
func Validate(code, artifactName string) []string {
	var errs []string

	if len(strings.TrimSpace(code)) < minCodeLength {
		errs = append(errs, fmt.Sprintf("artifact code shorter than %d characters", minCodeLength))
	}

	match := componentDeclPattern.FindStringSubmatch(code)
	if match == nil {
		errs = append(errs, "missing a top-level parameterless component declaration (const Name = () => {)")
	} else if artifactName != "" && match[1] != artifactName {
		errs = append(errs, fmt.Sprintf("component name %q does not match artifact_name %q", match[1], artifactName))
	}

	if !renderExpressionPattern.MatchString(code) {
		errs = append(errs, "missing a render expression (return (...<Element...))")
	}
	if !terminatingBracePattern.MatchString(strings.TrimSpace(code)) {
		errs = append(errs, "missing a terminating closing brace")
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(code) {
			errs = append(errs, fmt.Sprintf("contains forbidden pattern: %s", pattern.String()))
		}
	}

	return errs
}
