package logging

import (
	"regexp"
	"strings"
)

// Field names whose values must never reach the log output.
var sensitiveFields = []string{
	"password",
	"secret",
	"token",
	"api_key",
	"apikey",
	"api-key",
	"authorization",
	"credential",
}

// RedactedValue is the replacement for sensitive values.
const RedactedValue = "[REDACTED]"

// Patterns for secrets embedded in free-form strings.
var secretPatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	// Zulip API keys are 32 alphanumeric characters following the key name.
	{regexp.MustCompile(`(?i)(api[_-]?key[=:]["']?)[a-zA-Z0-9]{32}`), "${1}" + RedactedValue},

	// HTTP basic auth credentials in URLs.
	{regexp.MustCompile(`(?i)(https?://)[^:/@\s]+:[^@\s]+@`), "${1}" + RedactedValue + "@"},

	// Bearer and Basic authorization header values.
	{regexp.MustCompile(`(?i)(bearer|basic)\s+[a-zA-Z0-9+/=._-]{16,}`), "${1} " + RedactedValue},
}

// Redact replaces credential material in a string.
func Redact(s string) string {
	result := s
	for _, p := range secretPatterns {
		result = p.re.ReplaceAllString(result, p.repl)
	}
	return result
}

// IsSensitiveField checks if a field name is considered sensitive.
func IsSensitiveField(name string) bool {
	lowerName := strings.ToLower(name)
	for _, field := range sensitiveFields {
		if strings.Contains(lowerName, field) {
			return true
		}
	}
	return false
}
