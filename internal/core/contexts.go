package core

import "fmt"

// RelationshipContext describes one of the supported relationship types.
type RelationshipContext struct {
	Key         string   `json:"key"`
	Icon        string   `json:"icon"`
	Description string   `json:"description"`
	DefaultName string   `json:"default_name"`
	Tips        []string `json:"tips"`

	promptDescription string
}

var contexts = []RelationshipContext{
	{
		Key:               "romantic",
		Icon:              "💕",
		Description:       "Partner & intimate relationships",
		DefaultName:       "Partner",
		promptDescription: "romantic/intimate partnership",
		Tips: []string{
			"Use 'I feel' statements instead of 'You always/never'",
			"Address the need behind the emotion",
			"Focus on solving together, not winning",
			"Physical affection can help during difficult conversations",
		},
	},
	{
		Key:               "coparenting",
		Icon:              "👨‍👩‍👧‍👦",
		Description:       "Raising children together",
		DefaultName:       "Co-parent",
		promptDescription: "co-parenting relationship",
		Tips: []string{
			"Keep focus on the children's wellbeing",
			"Separate your hurt from parenting decisions",
			"Use business-like tone when emotions are high",
			"Remember: you're teammates for your kids' sake",
		},
	},
	{
		Key:               "workplace",
		Icon:              "🏢",
		Description:       "Professional relationships",
		DefaultName:       "Colleague",
		promptDescription: "professional/workplace relationship",
		Tips: []string{
			"Maintain professional boundaries while being human",
			"Focus on work impact rather than personal feelings",
			"Seek win-win solutions that benefit the team",
			"Document important conversations professionally",
		},
	},
	{
		Key:               "family",
		Icon:              "🏠",
		Description:       "Extended family connections",
		DefaultName:       "Family Member",
		promptDescription: "family relationship",
		Tips: []string{
			"Honor family history while setting healthy boundaries",
			"Respect generational differences in communication styles",
			"Focus on love beneath family dysfunction patterns",
			"Remember: you can't change them, only your response",
		},
	},
	{
		Key:               "friend",
		Icon:              "🤝",
		Description:       "Friendships & social bonds",
		DefaultName:       "Friend",
		promptDescription: "friendship",
		Tips: []string{
			"Friendships require mutual effort and understanding",
			"Address conflicts directly but gently",
			"Allow space for different life phases and priorities",
			"True friends want the best for each other",
		},
	},
}

var generalTips = []string{
	"Listen to understand, not to respond",
	"Speak from love, even when you're hurt",
	"Focus on healing the relationship, not being right",
	"Take breaks when emotions get too intense",
}

// Contexts returns the catalogue in display order.
func Contexts() []RelationshipContext {
	out := make([]RelationshipContext, len(contexts))
	copy(out, contexts)
	return out
}

func LookupContext(key string) (RelationshipContext, bool) {
	for _, c := range contexts {
		if c.Key == key {
			return c, true
		}
	}
	return RelationshipContext{}, false
}

func IsValidContext(key string) bool {
	_, ok := LookupContext(key)
	return ok
}

// ContextTips falls back to general advice for unknown keys.
func ContextTips(key string) []string {
	if c, ok := LookupContext(key); ok {
		return c.Tips
	}
	return generalTips
}

func describeContext(key string) string {
	if c, ok := LookupContext(key); ok {
		return c.promptDescription
	}
	return key + " relationship"
}

var scoreExplanations = map[int]string{
	10: "🌟 Perfect - Maximum healing potential, deeply transformative",
	9:  "✨ Excellent - Very high healing potential, strong connection builder",
	8:  "🌱 Great - High healing potential, clear relationship improvement",
	7:  "💚 Good - Solid healing approach, positive relationship impact",
	6:  "💛 Fair - Decent guidance with room for more healing focus",
	5:  "🔧 Basic - Standard response, minimal healing enhancement",
	4:  "⚠️ Below Average - Limited healing potential, needs improvement",
	3:  "🔴 Poor - Low healing value, may not help much",
	2:  "❌ Bad - Very limited benefit, likely ineffective",
	1:  "💔 Terrible - No healing value, potentially harmful",
}

func ScoreExplanation(score int) string {
	if e, ok := scoreExplanations[score]; ok {
		return e
	}
	return fmt.Sprintf("Score: %d/10", score)
}
