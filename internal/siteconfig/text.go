package siteconfig

import (
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTextLength caps free text fields.
	MaxTextLength = 10000
	// MaxSlugLength caps slugs.
	MaxSlugLength = 100
	// MaxLabelLength caps short labels such as nav entries and tags.
	MaxLabelLength = 200
	// MaxURLLength caps URLs.
	MaxURLLength = 2048
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphens = regexp.MustCompile(`-{2,}`)
	hexColor    = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
)

// SafeText returns v as a string truncated to max runes. Non-strings become "".
// A max of zero or less means MaxTextLength.
func SafeText(v any, max int) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	if max <= 0 {
		max = MaxTextLength
	}
	return truncate(s, max)
}

// SafeSlug lower-cases v, replaces runs of characters outside [a-z0-9-] with a
// single hyphen, collapses hyphens and trims them from both ends.
func SafeSlug(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugInvalid.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	return s
}

// SafeURL accepts http(s), mailto and site-relative URLs. Anything else becomes "".
func SafeURL(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" || len(s) > MaxURLLength || strings.ContainsAny(s, " \t\r\n<>\"") {
		return ""
	}
	lower := strings.ToLower(s)
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		u, err := url.Parse(s)
		if err != nil || u.Host == "" {
			return ""
		}
		return s
	case strings.HasPrefix(lower, "mailto:"):
		if SafeEmail(s[len("mailto:"):]) == "" {
			return ""
		}
		return s
	case strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "//"):
		return s
	}
	return ""
}

// SafeEmail returns a bare address or "".
func SafeEmail(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 254 {
		return ""
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return ""
	}
	return s
}

// SafeColor accepts #rgb and #rrggbb colours.
func SafeColor(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	s = strings.TrimSpace(s)
	if !hexColor.MatchString(s) {
		return ""
	}
	return strings.ToLower(s)
}

// ParseStringArray keeps the non-empty string elements of an array, trimmed and capped.
func ParseStringArray(input any) []string {
	arr, ok := decodeArray(input)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		s, ok := el.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(truncate(strings.TrimSpace(s), MaxLabelLength))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// ParseTags behaves like ParseStringArray but also lower-cases and de-duplicates.
func ParseTags(input any) []string {
	raw := ParseStringArray(input)
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(truncate(strings.ToLower(t), MaxLabelLength))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func truncate(s string, max int) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max])
}

func trimmedText(m map[string]any, key string, max int) string {
	s, _ := stringField(m, key)
	return strings.TrimSpace(SafeText(s, max))
}
