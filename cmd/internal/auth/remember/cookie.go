package remember

import (
	"strings"

	"station/cmd/security/token"
)

// FormatCookieValue joins the two halves with a single space.
func FormatCookieValue(lookupID, secret string) string {
	return lookupID + " " + secret
}

// ParseCookieValue splits a cookie value into its halves. Anything that is
// not exactly two well-formed tokens separated by one space is rejected and
// must be treated as if no cookie had been sent.
func ParseCookieValue(v string) (lookupID, secret string, ok bool) {
	lookupID, secret, found := strings.Cut(strings.TrimSpace(v), " ")
	if !found {
		return "", "", false
	}
	if !token.Valid(lookupID) || !token.Valid(secret) {
		return "", "", false
	}
	return lookupID, secret, true
}
