package store

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt    time.Time `json:"created_at"`
}

type Session struct {
	ID        string    `json:"id"` // also the JWT ID
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Contact struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Context   string    `json:"context"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	MessageTypeIncoming  = "incoming"
	MessageTypeCoach     = "coach"
	MessageTypeTranslate = "translate"
)

type Message struct {
	ID             string    `json:"id"`
	ContactID      string    `json:"contact_id"`
	ContactName    string    `json:"contact_name"`
	UserID         string    `json:"user_id"`
	Type           string    `json:"type"` // incoming, coach or translate
	Original       string    `json:"original"`
	Result         *string   `json:"result"` // nil for incoming rows
	Sentiment      string    `json:"sentiment"`
	EmotionalState string    `json:"emotional_state"`
	HealingScore   int       `json:"healing_score"`
	Model          string    `json:"model"`
	CreatedAt      time.Time `json:"created_at"`
}

type CacheEntry struct {
	ContactID      string    `json:"contact_id"`
	MessageHash    string    `json:"message_hash"`
	UserID         string    `json:"user_id"`
	Context        string    `json:"context"`
	Response       string    `json:"response"`
	HealingScore   int       `json:"healing_score"`
	Model          string    `json:"model"`
	Sentiment      string    `json:"sentiment"`
	EmotionalState string    `json:"emotional_state"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type Interpretation struct {
	ID                  string    `json:"id"`
	ContactID           string    `json:"contact_id"`
	ContactName         string    `json:"contact_name"`
	UserID              string    `json:"user_id"`
	OriginalMessage     string    `json:"original_message"`
	Interpretation      string    `json:"interpretation"`
	InterpretationScore int       `json:"interpretation_score"`
	Model               string    `json:"model"`
	CreatedAt           time.Time `json:"created_at"`
}

type Feedback struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Rating         int       `json:"rating"`
	FeedbackText   *string   `json:"feedback_text"`
	FeatureContext string    `json:"feature_context"`
	CreatedAt      time.Time `json:"created_at"`
}

type UserStats struct {
	ContactCount    int     `json:"contact_count"`
	MessageCount    int     `json:"message_count"`
	AvgHealingScore float64 `json:"avg_healing_score"`
}
