package core

import (
	"context"
	"fmt"
	"math"
	"slices"

	"thirdvoice.ai/third-voice/internal/store"
)

// HealthScore averages the last ten scored exchanges. The score is rounded
// to one decimal.
func HealthScore(history []store.Message) (float64, string) {
	if len(history) == 0 {
		return 0, "No data yet"
	}
	scores := scoresOf(lastN(history, 10))
	if len(scores) == 0 {
		return 0, "No scored conversations yet"
	}

	avg := average(scores)
	var status string
	switch {
	case avg >= 8:
		status = "Thriving - Excellent communication patterns"
	case avg >= 6:
		status = "Growing - Good progress with room to improve"
	case avg >= 4:
		status = "Healing - Working through challenges together"
	default:
		status = "Struggling - Focus on understanding and patience"
	}
	return math.Round(avg*10) / 10, status
}

func HealingInsights(history []store.Message) []string {
	if len(history) < 3 {
		return []string{"🌱 You're just getting started! Every conversation is a step toward healing."}
	}

	var insights []string
	scores := scoresOf(history)

	if len(scores) >= 5 {
		recentAvg := average(scores[len(scores)-5:])
		older := scores[:len(scores)-5]
		if len(scores) >= 10 {
			older = scores[len(scores)-10 : len(scores)-5]
		}
		olderAvg := recentAvg
		if len(older) > 0 {
			olderAvg = average(older)
		}
		switch {
		case recentAvg > olderAvg+0.5:
			insights = append(insights, "📈 Your communication is improving! Recent conversations show higher healing scores.")
		case recentAvg < olderAvg-0.5:
			insights = append(insights, "💪 Having some challenges lately? That's normal - healing isn't always linear.")
		}
	}

	high := 0
	for _, s := range scores {
		if s >= 8 {
			high++
		}
	}
	if high >= 3 {
		insights = append(insights, fmt.Sprintf("🌟 Amazing! You've had %d conversations with healing scores of 8+!", high))
	}

	if len(scores) >= 7 {
		healthy := 0
		for _, s := range scores[len(scores)-7:] {
			if s >= 6 {
				healthy++
			}
		}
		if float64(healthy)/7 >= 0.7 {
			insights = append(insights, "🎯 You're building consistent healthy communication patterns!")
		}
	}

	if len(scores) > 0 && slices.Max(scores[max(0, len(scores)-5):]) < 6 {
		insights = append(insights, "🤗 Remember: every family faces challenges. You're here working on it - that matters.")
	}

	if len(insights) == 0 {
		return []string{"💙 Keep going - healing happens one conversation at a time."}
	}
	return insights
}

func Trajectory(history []store.Message) string {
	if len(history) < 5 {
		return "Too early to predict - keep building positive patterns."
	}
	scores := scoresOf(lastN(history, 5))
	if len(scores) == 0 {
		return "Need more scored conversations for prediction."
	}
	if len(scores) < 3 {
		return "Building understanding of your communication patterns..."
	}

	trend := scores[len(scores)-1] - scores[0]
	avg := average(scores)
	switch {
	case trend > 1 && avg >= 7:
		return "🚀 Trajectory: THRIVING - This relationship is on an excellent path!"
	case trend > 0 && avg >= 6:
		return "📈 Trajectory: IMPROVING - Strong positive momentum building."
	case avg >= 6:
		return "✨ Trajectory: STABLE & HEALTHY - Maintaining good communication."
	case trend > 0:
		return "🌱 Trajectory: HEALING - Progress visible, keep going!"
	default:
		return "💪 Trajectory: CHALLENGING - Focus on understanding and patience."
	}
}

func allScores(history []store.Message) []int {
	out := make([]int, len(history))
	for i, m := range history {
		out[i] = m.HealingScore
	}
	return out
}

func ConversationSummary(history []store.Message) string {
	if len(history) == 0 {
		return "No conversations yet - ready to begin healing."
	}

	total := len(history)
	scores := allScores(history)
	avg := average(scores)

	journey := "🌟 Building foundation - every conversation matters."
	if total >= 10 {
		early := average(scores[:5])
		recent := average(scores[total-5:])
		switch {
		case recent > early+1:
			journey = "📈 Remarkable growth - you've transformed this relationship!"
		case recent > early:
			journey = "🌱 Steady improvement - keep nurturing this growth."
		default:
			journey = "💪 Working through challenges - persistence is key."
		}
	}
	return fmt.Sprintf("%s (%d conversations, %.1f/10 avg healing)", journey, total, avg)
}

// ContactInsights is the relationship overview for one contact.
type ContactInsights struct {
	ContactID    string   `json:"contact_id"`
	HealthScore  float64  `json:"health_score"`
	HealthStatus string   `json:"health_status"`
	Insights     []string `json:"insights"`
	Trajectory   string   `json:"trajectory"`
	Summary      string   `json:"summary"`
	Patterns     string   `json:"patterns"`
	Themes       string   `json:"themes"`
	Tips         []string `json:"tips"`
}

type InsightsService struct {
	store *store.SQLStore
}

func NewInsightsService(s *store.SQLStore) *InsightsService {
	return &InsightsService{store: s}
}

func (s *InsightsService) ForContact(ctx context.Context, userID, contactID string) (*ContactInsights, error) {
	contact, err := s.store.GetContact(ctx, contactID, userID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, store.ErrNotFound
	}

	messages, err := s.store.ListMessages(ctx, contactID, userID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	history := conversationRows(messages)

	score, status := HealthScore(history)
	return &ContactInsights{
		ContactID:    contactID,
		HealthScore:  score,
		HealthStatus: status,
		Insights:     HealingInsights(history),
		Trajectory:   Trajectory(history),
		Summary:      ConversationSummary(history),
		Patterns:     ConversationPatterns(history),
		Themes:       RecurringThemes(history),
		Tips:         ContextTips(contact.Context),
	}, nil
}

func (s *InsightsService) Stats(ctx context.Context, userID string) (*store.UserStats, error) {
	return s.store.GetUserStats(ctx, userID)
}
