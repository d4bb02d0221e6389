package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  hello \n"))
	assert.Equal(t, "", SanitizeInput("   "))

	long := strings.Repeat("é", MaxInputRunes+10)
	got := SanitizeInput(long)
	assert.Equal(t, MaxInputRunes, len([]rune(got)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "", Truncate("abc", 0))
}

func TestCleanContactName(t *testing.T) {
	assert.Equal(t, "Mary Jane", CleanContactName("  mary jane "))
	assert.Equal(t, "Sam", CleanContactName("SAM"))
}
