package identity

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxUsernameLen = 32
	maxEmailLen    = 320
)

// NormalizeUsername performs case-insensitive canonicalization.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeEmail performs case-insensitive canonicalization.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func validateUsername(s string) string {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return "username is required"
	}
	if n > maxUsernameLen {
		return "username is too long"
	}
	for _, r := range s {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return "username contains whitespace or control characters"
		}
	}
	return ""
}

func validateEmail(s string) string {
	if s == "" {
		return "email is required"
	}
	if utf8.RuneCountInString(s) > maxEmailLen {
		return "email is too long"
	}
	at := strings.LastIndexByte(s, '@')
	if at <= 0 || at == len(s)-1 || strings.ContainsAny(s, " \t\r\n") {
		return "email is malformed"
	}
	return ""
}
