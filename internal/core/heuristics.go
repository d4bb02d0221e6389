package core

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

type Mode string

const (
	ModeCoach     Mode = "coach"
	ModeTranslate Mode = "translate"
)

var incomingMarkers = []string{"said:", "wrote:", "texted:", "told me:"}

// Classify treats text that quotes someone else as an incoming message to
// translate; everything else is the user's own draft to coach.
func Classify(text string) Mode {
	lower := strings.ToLower(text)
	for _, marker := range incomingMarkers {
		if strings.Contains(lower, marker) {
			return ModeTranslate
		}
	}
	return ModeCoach
}

var healingKeywords = []string{"understand", "love", "connect", "care"}

// HealingScore rates a completion on a 0-10 scale.
func HealingScore(response string) int {
	score := 5
	if utf8.RuneCountInString(response) > 200 {
		score++
	}
	lower := strings.ToLower(response)
	matched := 0
	for _, kw := range healingKeywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}
	score += min(2, matched)
	return clampScore(score)
}

var interpretationKeywords = []string{"fear", "hurt", "love", "safe", "understand"}

// InterpretationScore rates how revealing an interpretation is.
func InterpretationScore(interpretation string) int {
	score := 5
	if utf8.RuneCountInString(interpretation) > 300 {
		score++
	}
	lower := strings.ToLower(interpretation)
	for _, kw := range interpretationKeywords {
		if strings.Contains(lower, kw) {
			score += 2
			break
		}
	}
	if strings.Contains(lower, "healing opportunities") {
		score += 2
	}
	return clampScore(score)
}

func clampScore(score int) int {
	return max(0, min(10, score))
}

// MessageHash is the cache key component for a message sent under a
// relationship context.
func MessageHash(message, relationshipContext string) string {
	normalized := strings.ToLower(strings.TrimSpace(message)) + relationshipContext
	sum := md5.Sum([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
