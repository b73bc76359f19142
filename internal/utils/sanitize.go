package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxErrorLength caps sanitized error text.
const MaxErrorLength = 500

var secretPatterns = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]*`), "[redacted-jwt]"},
	{regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]+`), "Bearer [redacted]"},
	{regexp.MustCompile(`\b(?:sk|pk|rk)_[A-Za-z0-9_]{8,}`), "[redacted-key]"},
	{regexp.MustCompile(`(?i)\b(api[_-]?key|apikey|key|token|secret|password)(\s*[=:]\s*)[^\s&,;'"]+`), "${1}${2}[redacted]"},
}

// SanitizeError strips strings that look like API keys, bearer tokens and
// JWTs from msg, then truncates it to MaxErrorLength characters.
func SanitizeError(msg string) string {
	for _, p := range secretPatterns {
		msg = p.re.ReplaceAllString(msg, p.repl)
	}
	msg = strings.TrimSpace(strings.ToValidUTF8(msg, ""))
	if utf8.RuneCountInString(msg) <= MaxErrorLength {
		return msg
	}
	r := []rune(msg)
	return string(r[:MaxErrorLength-3]) + "..."
}

// SanitizeErr is SanitizeError for an error value; nil yields "".
func SanitizeErr(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeError(err.Error())
}
