package core

import (
	"net/mail"
	"strings"
)

// EmailString represents a validated email address.
type EmailString = string

// BuildEmail validates an email address format and returns the normalized
// (trimmed, lowercased domain) form. Returns ErrInvalidEmail on bad format.
func BuildEmail(raw string) (EmailString, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	parsed, err := mail.ParseAddress(trimmed)
	if err != nil || parsed.Address != trimmed {
		return "", ErrInvalidEmail
	}

	at := strings.LastIndexByte(trimmed, '@')
	if at <= 0 || !strings.Contains(trimmed[at+1:], ".") {
		return "", ErrInvalidEmail
	}

	return trimmed[:at] + "@" + strings.ToLower(trimmed[at+1:]), nil
}
