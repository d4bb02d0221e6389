package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"thirdvoice.ai/third-voice/internal/store"
)

func withScores(scores ...int) []store.Message {
	out := make([]store.Message, len(scores))
	for i, s := range scores {
		out[i] = scored("msg", s)
	}
	return out
}

func TestHealthScore(t *testing.T) {
	score, status := HealthScore(nil)
	assert.Zero(t, score)
	assert.Equal(t, "No data yet", status)

	score, status = HealthScore(withScores(0, 0))
	assert.Zero(t, score)
	assert.Equal(t, "No scored conversations yet", status)

	tests := []struct {
		scores     []int
		wantScore  float64
		wantPrefix string
	}{
		{[]int{8, 9, 8}, 8.3, "Thriving"},
		{[]int{6, 7}, 6.5, "Growing"},
		{[]int{4, 5, 0}, 4.5, "Healing"},
		{[]int{2, 3}, 2.5, "Struggling"},
		// only the last ten count
		{[]int{1, 1, 1, 1, 9, 9, 9, 9, 9, 9, 9, 9, 9}, 8.2, "Thriving"},
	}
	for _, tt := range tests {
		score, status := HealthScore(withScores(tt.scores...))
		assert.InDelta(t, tt.wantScore, score, 0.001)
		assert.Contains(t, status, tt.wantPrefix)
	}
}

func TestHealingInsights(t *testing.T) {
	assert.Equal(t, []string{"🌱 You're just getting started! Every conversation is a step toward healing."},
		HealingInsights(withScores(5, 5)))

	improving := HealingInsights(withScores(4, 4, 4, 4, 4, 7, 8, 8, 8, 8))
	assert.Contains(t, improving, "📈 Your communication is improving! Recent conversations show higher healing scores.")
	assert.Contains(t, improving, "🌟 Amazing! You've had 4 conversations with healing scores of 8+!")

	struggling := HealingInsights(withScores(5, 5, 4))
	assert.Contains(t, struggling, "🤗 Remember: every family faces challenges. You're here working on it - that matters.")

	steady := HealingInsights(withScores(6, 7, 6))
	assert.Equal(t, []string{"💙 Keep going - healing happens one conversation at a time."}, steady)
}

func TestTrajectory(t *testing.T) {
	assert.Contains(t, Trajectory(withScores(5, 6)), "Too early")
	assert.Contains(t, Trajectory(withScores(0, 0, 0, 0, 0)), "Need more scored")
	assert.Contains(t, Trajectory(withScores(6, 7, 7, 8, 9)), "THRIVING")
	assert.Contains(t, Trajectory(withScores(6, 6, 6, 6, 7)), "IMPROVING")
	assert.Contains(t, Trajectory(withScores(7, 6, 6, 6, 6)), "STABLE")
	assert.Contains(t, Trajectory(withScores(3, 3, 3, 4, 5)), "HEALING")
	assert.Contains(t, Trajectory(withScores(5, 4, 4, 4, 3)), "CHALLENGING")
}

func TestConversationSummary(t *testing.T) {
	assert.Equal(t, "No conversations yet - ready to begin healing.", ConversationSummary(nil))
	assert.Equal(t, "🌟 Building foundation - every conversation matters. (2 conversations, 6.0/10 avg healing)",
		ConversationSummary(withScores(5, 7)))
	assert.Contains(t, ConversationSummary(withScores(4, 4, 4, 4, 4, 6, 6, 6, 6, 6)), "Remarkable growth")
	assert.Contains(t, ConversationSummary(withScores(5, 5, 5, 5, 5, 5, 5, 5, 5, 6)), "Steady improvement")
	assert.Contains(t, ConversationSummary(withScores(6, 6, 6, 6, 6, 5, 5, 5, 5, 5)), "Working through challenges")
}
