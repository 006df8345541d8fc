package llmgateway

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ExtractJSON recovers a JSON object from raw LLM text, tolerating fenced
// code blocks and the control-character noise that SQL-bearing string
// values tend to introduce.
//
// Returns the parsed object, or a non-empty error description when no
// object could be recovered.
func ExtractJSON(text string) (map[string]any, string) {
	cleaned := stripCodeFences(text)

	if obj, ok := tryParseObject(cleaned); ok {
		return obj, ""
	}

	if sliced, ok := sliceToBraces(cleaned); ok {
		if obj, ok := tryParseObject(cleanJSONString(sliced)); ok {
			return obj, ""
		}
	}

	if obj, ok := tryParseObject(cleanJSONString(cleaned)); ok {
		return obj, ""
	}

	if candidate, ok := aggressiveCleanup(text); ok {
		if obj, ok := tryParseObject(candidate); ok {
			return obj, ""
		}
	}

	return nil, "no valid JSON object found in response"
}

func tryParseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// stripCodeFences removes ```json ... ``` or generic ``` ... ``` wrapping.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)

	if idx := strings.Index(text, "```json"); idx != -1 {
		start := idx + len("```json")
		if end := strings.Index(text[start:], "```"); end != -1 {
			return strings.TrimSpace(text[start : start+end])
		}
		return strings.TrimSpace(text[start:])
	}

	if strings.HasPrefix(text, "```") {
		text = fenceOpenPattern.ReplaceAllString(text, "")
		text = strings.ReplaceAll(text, "```", "")
		return strings.TrimSpace(text)
	}

	return text
}

var fenceOpenPattern = regexp.MustCompile("```[a-zA-Z0-9]*\n?")

// sliceToBraces trims everything before the first '{' and after the last '}'.
func sliceToBraces(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

var sqlStringPattern = regexp.MustCompile(`(?is)"([^"]*(?:SELECT|FROM|WHERE|GROUP BY|ORDER BY)[^"]*)"`)
var whitespaceRun = regexp.MustCompile(`\s+`)

// cleanJSONString collapses embedded newlines/tabs inside SQL-looking
// quoted strings (a raw SQL string with literal newlines breaks strict JSON
// parsing) and normalizes surrounding whitespace.
func cleanJSONString(s string) string {
	s = sqlStringPattern.ReplaceAllStringFunc(s, func(match string) string {
		inner := match[1 : len(match)-1]
		inner = whitespaceRun.ReplaceAllString(inner, " ")
		return `"` + strings.TrimSpace(inner) + `"`
	})
	s = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var controlCharPattern = regexp.MustCompile(`[\n\r\t\f\v]`)
var trailingCommaObj = regexp.MustCompile(`,\s*}`)
var trailingCommaArr = regexp.MustCompile(`,\s*]`)

// aggressiveCleanup is the last-resort pass: slice to the outermost braces,
// blank out control characters, and strip trailing commas before JSON
// objects/arrays close.
func aggressiveCleanup(text string) (string, bool) {
	sliced, ok := sliceToBraces(text)
	if !ok {
		return "", false
	}
	sliced = controlCharPattern.ReplaceAllString(sliced, " ")
	sliced = trailingCommaObj.ReplaceAllString(sliced, "}")
	sliced = trailingCommaArr.ReplaceAllString(sliced, "]")
	sliced = whitespaceRun.ReplaceAllString(sliced, " ")
	return strings.TrimSpace(sliced), true
}
