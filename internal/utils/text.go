package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MaxInputRunes caps user-submitted message text.
const MaxInputRunes = 5000

// SanitizeInput trims surrounding whitespace and caps the text at
// MaxInputRunes runes.
func SanitizeInput(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) > MaxInputRunes {
		text = string([]rune(text)[:MaxInputRunes])
	}
	return text
}

// Truncate shortens text to at most n runes, appending "..." when cut.
func Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}

// CleanContactName trims and title-cases a contact name.
func CleanContactName(name string) string {
	// Casers are stateful; one per call.
	return cases.Title(language.Und).String(strings.TrimSpace(name))
}
