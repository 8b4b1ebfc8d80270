package domain

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

func ValidEmail(s string) bool {
	return len(s) <= 254 && emailRe.MatchString(s)
}

// Password: min 8 chars, at least one letter and one digit. Detailed
// feedback belongs to the UI; the backend only enforces the floor.
func ValidPassword(s string) bool {
	if len(s) < 8 {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			letter = true
		}
	}
	return letter && digit
}

func ValidPostTitle(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= 3 && n <= 120
}

func ValidPostDescription(s string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(s))
	return n >= 10 && n <= 5000
}

func ValidPrice(p float64) bool {
	return p >= 0 && p <= 10_000_000
}

func ValidRating(r int) bool { return r >= 1 && r <= 5 }
