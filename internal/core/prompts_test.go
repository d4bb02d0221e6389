package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"thirdvoice.ai/third-voice/internal/store"
)

func scored(original string, score int) store.Message {
	return store.Message{Type: store.MessageTypeCoach, Original: original, HealingScore: score}
}

func TestTransformationPrompt_EarlyConversation(t *testing.T) {
	p := TransformationPrompt("Sam", "coparenting", ModeCoach, nil)
	assert.Contains(t, p, "co-parenting relationship with Sam")
	assert.Contains(t, p, "early conversation")
	assert.Contains(t, p, "Reframe their message")
	assert.NotContains(t, p, "RELATIONSHIP INSIGHTS")
}

func TestTransformationPrompt_WithHistory(t *testing.T) {
	history := []store.Message{
		{Type: store.MessageTypeIncoming, Original: "ignored"},
		scored("You never listen and we never talk", 5),
		scored("I feel hurt when you are busy", 6),
		scored("I'm angry, you have no time for me", 8),
	}
	p := TransformationPrompt("Alex", "romantic", ModeTranslate, history)
	assert.Contains(t, p, "RELATIONSHIP INSIGHTS")
	assert.Contains(t, p, "Healing trend: improving (avg: 6.3/10)")
	assert.Contains(t, p, "communication")
	assert.Contains(t, p, "emotions")
	assert.Contains(t, p, "time")
	assert.Contains(t, p, "Total conversations: 3")
	assert.Contains(t, p, "suggest a loving response")
}

func TestConversationPatterns(t *testing.T) {
	assert.Equal(t, "Limited history available", ConversationPatterns([]store.Message{scored("a", 5)}))
	assert.Equal(t, "Building relationship understanding...",
		ConversationPatterns([]store.Message{scored("a", 0), scored("b", 0), scored("c", 0)}))
	assert.Equal(t, "Healing trend: stable (avg: 6.0/10)",
		ConversationPatterns([]store.Message{scored("a", 7), scored("b", 5), scored("c", 6)}))
}

func TestRecurringThemes(t *testing.T) {
	assert.Equal(t, "New relationship - learning patterns", RecurringThemes(nil))
	assert.Equal(t, "Varied conversation topics",
		RecurringThemes([]store.Message{scored("hello", 5), scored("dinner?", 5)}))
	assert.Equal(t, "trust",
		RecurringThemes([]store.Message{scored("be honest", 5), scored("I trust you", 5)}))
}

func TestInterpretationPrompt(t *testing.T) {
	history := []store.Message{
		scored("one", 5), scored("two", 6), scored("three", 7), scored("four", 8),
	}
	p := InterpretationPrompt("Sam", "family", "You're always late", history)
	assert.Contains(t, p, `For this family relationship message from Sam: "You're always late"`)
	assert.Contains(t, p, "RELATIONSHIP CONTEXT")
	assert.NotContains(t, p, "Previous: 'one'")
	assert.Contains(t, p, "Previous: 'four' (Score: 8/10)")
	assert.Contains(t, p, "HEALING OPPORTUNITIES")

	bare := InterpretationPrompt("Sam", "family", "hi", nil)
	assert.NotContains(t, bare, "RELATIONSHIP CONTEXT")
}
