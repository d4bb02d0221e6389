package core

import (
	"fmt"
	"strings"

	"thirdvoice.ai/third-voice/internal/store"
	"thirdvoice.ai/third-voice/internal/utils"
)

const (
	HistoryLimit     = 50 // messages loaded as relationship memory
	patternWindow    = 5  // messages considered for the healing trend
	interpretSamples = 3  // previous messages quoted in interpretation prompts
)

// conversationRows drops the bookkeeping "incoming" rows so history only
// holds coach and translate exchanges.
func conversationRows(history []store.Message) []store.Message {
	out := make([]store.Message, 0, len(history))
	for _, m := range history {
		if m.Type == store.MessageTypeIncoming {
			continue
		}
		out = append(out, m)
	}
	return out
}

func lastN(history []store.Message, n int) []store.Message {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func scoresOf(history []store.Message) []int {
	scores := make([]int, 0, len(history))
	for _, m := range history {
		if m.HealingScore > 0 {
			scores = append(scores, m.HealingScore)
		}
	}
	return scores
}

func average(scores []int) float64 {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// ConversationPatterns summarises the healing trend of the latest exchanges.
func ConversationPatterns(history []store.Message) string {
	if len(history) < 3 {
		return "Limited history available"
	}
	scores := scoresOf(lastN(history, patternWindow))
	if len(scores) == 0 {
		return "Building relationship understanding..."
	}
	trend := "stable"
	if len(scores) > 1 && scores[len(scores)-1] > scores[0] {
		trend = "improving"
	}
	return fmt.Sprintf("Healing trend: %s (avg: %.1f/10)", trend, average(scores))
}

var themeKeywords = []struct {
	theme    string
	keywords []string
}{
	{"communication", []string{"listen", "understand", "hear", "talk"}},
	{"respect", []string{"respect", "appreciate", "value", "disrespect"}},
	{"time", []string{"time", "busy", "schedule", "priority"}},
	{"emotions", []string{"feel", "hurt", "angry", "sad", "frustrated"}},
	{"trust", []string{"trust", "honest", "lie", "truth"}},
}

// RecurringThemes lists the topic families mentioned at least twice across
// the original messages.
func RecurringThemes(history []store.Message) string {
	if len(history) < 2 {
		return "New relationship - learning patterns"
	}
	var b strings.Builder
	for _, m := range history {
		b.WriteString(strings.ToLower(m.Original))
		b.WriteByte(' ')
	}
	all := b.String()

	var themes []string
	for _, t := range themeKeywords {
		hits := 0
		for _, kw := range t.keywords {
			if strings.Contains(all, kw) {
				hits++
			}
		}
		if hits >= 2 {
			themes = append(themes, t.theme)
		}
	}
	if len(themes) == 0 {
		return "Varied conversation topics"
	}
	return strings.Join(themes, ", ")
}

// TransformationPrompt builds the system prompt for coach and translate
// completions. history must be in chronological order.
func TransformationPrompt(contactName, contextKey string, mode Mode, history []store.Message) string {
	history = conversationRows(history)

	var b strings.Builder
	fmt.Fprintf(&b, "You are a compassionate relationship guide helping with a %s relationship with %s.",
		describeContext(contextKey), contactName)

	if len(history) < 2 {
		b.WriteString(" This is an early conversation, so focus on building understanding.")
	} else {
		fmt.Fprintf(&b, `
RELATIONSHIP INSIGHTS:
- Conversation patterns: %s
- Recurring themes: %s
- Total conversations: %d

Consider this relationship history when providing guidance. Reference patterns where helpful, but don't overwhelm with past details.`,
			ConversationPatterns(history), RecurringThemes(history), len(history))
	}

	if mode == ModeTranslate {
		b.WriteString(" Understand what they mean and suggest a loving response.")
	} else {
		b.WriteString(" Reframe their message to be constructive and loving.")
	}
	b.WriteString(" Keep it concise, insightful, and actionable (2-3 paragraphs).")
	return b.String()
}

// InterpretationPrompt builds the system prompt that asks for the emotional
// subtext of a received message.
func InterpretationPrompt(contactName, contextKey, message string, history []store.Message) string {
	history = conversationRows(history)

	var samples []string
	for _, m := range lastN(history, patternWindow) {
		if m.Original != "" && m.HealingScore > 0 {
			samples = append(samples, fmt.Sprintf("Previous: '%s' (Score: %d/10)", utils.Truncate(m.Original, 50), m.HealingScore))
		}
	}
	relationship := ""
	if len(samples) > 0 {
		if len(samples) > interpretSamples {
			samples = samples[len(samples)-interpretSamples:]
		}
		relationship = "\nRELATIONSHIP CONTEXT:\n" + strings.Join(samples, "\n")
	}

	return fmt.Sprintf(`You are an expert relationship therapist analyzing emotional subtext with deep compassion.

For this %s relationship message from %s: "%s"
%s

Provide insights in exactly this format:

**🎭 EMOTIONAL SUBTEXT**
What they're really feeling beneath the words (1-2 sentences)

**💔 UNMET NEEDS**
What they actually need but can't express (1-2 sentences)

**🌱 HEALING OPPORTUNITIES**
Specific ways to address their deeper needs (2-3 actionable suggestions)

**⚠️ WATCH FOR**
Relationship patterns or warning signs (1 sentence)

Be direct but loving. This person is trying to heal their family.`, contextKey, contactName, message, relationship)
}
