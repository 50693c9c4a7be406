package core

import "strings"

// BuildISBN validates and normalizes an ISBN-10 or ISBN-13.
// Hyphens and spaces are stripped; the normalized form is returned.
// Returns ErrInvalidISBN when the format is not recognizable.
func BuildISBN(raw string) (ISBNString, error) {
	normalized := strings.ToUpper(strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, raw))

	switch len(normalized) {
	case 10:
		if !isValidISBN10(normalized) {
			return "", ErrInvalidISBN
		}
	case 13:
		if !isValidISBN13(normalized) {
			return "", ErrInvalidISBN
		}
	default:
		return "", ErrInvalidISBN
	}

	return normalized, nil
}

// isValidISBN10 checks nine digits followed by a digit or 'X' check character.
func isValidISBN10(s string) bool {
	for i := 0; i < 9; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	last := s[9]

	return (last >= '0' && last <= '9') || last == 'X'
}

// isValidISBN13 checks thirteen digits with a known bookland prefix.
func isValidISBN13(s string) bool {
	for i := 0; i < 13; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return strings.HasPrefix(s, "978") || strings.HasPrefix(s, "979")
}
