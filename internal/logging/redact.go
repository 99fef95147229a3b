package logging

import (
	"regexp"
	"strings"
)

// sensitivePatterns contains regex patterns for secrets that may appear in logged text.
var sensitivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?token|auth[_-]?token|bearer|password)([=:\s]+["']?)([^\s"']+)`),
	regexp.MustCompile(`sk-[A-Za-z0-9_\-]{16,}`),
}

// MaskSecrets replaces API keys and credential-looking values with a mask.
func MaskSecrets(s string) string {
	s = sensitivePatterns[0].ReplaceAllString(s, "${1}${2}****")
	return sensitivePatterns[1].ReplaceAllStringFunc(s, MaskKey)
}

// MaskKey keeps the first and last four characters of a key.
func MaskKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
