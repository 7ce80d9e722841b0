package common

import (
	"net/mail"
	"strings"
)

// ExtractToken returns the token carried by an Authorization value, which may
// be the raw token or "Bearer <token>" (scheme case-insensitive).
func ExtractToken(header string) string {
	h := strings.TrimSpace(header)
	if len(h) > len(BearerPrefix) && strings.EqualFold(h[:len(BearerPrefix)], BearerPrefix) {
		h = strings.TrimSpace(h[len(BearerPrefix):])
	}
	return h
}

// IsValidEmail accepts a bare addr-spec with a dotted domain, such as
// "neo@example.com". Display names and angle brackets are rejected.
func IsValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	return at > 0 && strings.Contains(s[at+1:], ".")
}
