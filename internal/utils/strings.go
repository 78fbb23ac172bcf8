package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TitleName normalizes a person's name: "  juan  pérez " -> "Juan Pérez".
func TitleName(s string) string {
	// cases.Caser keeps state, so one per call.
	return cases.Title(language.Spanish).String(strings.ToLower(NormalizeSpace(s)))
}

// IsDigits reports whether s is exactly n ASCII digits.
func IsDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

