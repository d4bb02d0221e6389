package core

import (
	"context"
	"fmt"
	"time"

	"thirdvoice.ai/third-voice/internal/cache"
	"thirdvoice.ai/third-voice/internal/logger"
	"thirdvoice.ai/third-voice/internal/store"
	"thirdvoice.ai/third-voice/internal/utils"
)

const (
	defaultSentiment      = "neutral"
	defaultEmotionalState = "calm"

	interpretTemperature = 0.6
	interpretMaxTokens   = 400
)

type CoachOptions struct {
	Temperature float64
	MaxTokens   int
	CacheTTL    time.Duration
}

type CoachService struct {
	store     *store.SQLStore
	cache     cache.ResponseCache
	completer Completer
	log       *logger.Logger
	opts      CoachOptions
	now       func() time.Time
}

func NewCoachService(s *store.SQLStore, c cache.ResponseCache, completer Completer, log *logger.Logger, opts CoachOptions) *CoachService {
	return &CoachService{
		store:     s,
		cache:     c,
		completer: completer,
		log:       log.With("service", "CoachService"),
		opts:      opts,
		now:       time.Now,
	}
}

type ProcessResult struct {
	Mode             Mode           `json:"mode"`
	Response         string         `json:"response"`
	HealingScore     int            `json:"healing_score"`
	ScoreExplanation string         `json:"score_explanation"`
	Sentiment        string         `json:"sentiment"`
	EmotionalState   string         `json:"emotional_state"`
	Model            string         `json:"model"`
	Cached           bool           `json:"cached"`
	Message          *store.Message `json:"message"`
}

func (s *CoachService) contact(ctx context.Context, userID, contactID string) (*store.Contact, error) {
	contact, err := s.store.GetContact(ctx, contactID, userID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, store.ErrNotFound
	}
	return contact, nil
}

// Process coaches an outgoing draft or translates a quoted incoming message,
// serving from the response cache when possible. Both the raw input and the
// result are appended to the contact's history.
func (s *CoachService) Process(ctx context.Context, userID, contactID, message string) (*ProcessResult, error) {
	message = utils.SanitizeInput(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	contact, err := s.contact(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	mode := Classify(message)
	now := s.now().UTC()
	key := cache.Key{ContactID: contact.ID, MessageHash: MessageHash(message, contact.Context), UserID: userID}

	result := &ProcessResult{Mode: mode}
	entry, err := s.cache.Get(ctx, key, now)
	if err != nil {
		s.log.Warn("Cache lookup failed, treating as miss", "contact_id", contact.ID, "error", err)
		entry = nil
	}

	if entry != nil {
		result.Cached = true
		result.Response = entry.Response
		result.HealingScore = entry.HealingScore
		result.Sentiment = entry.Sentiment
		result.EmotionalState = entry.EmotionalState
		result.Model = entry.Model
	} else {
		history, err := s.store.ListMessages(ctx, contact.ID, userID, HistoryLimit)
		if err != nil {
			return nil, err
		}
		completion, err := s.completer.Complete(ctx, CompletionRequest{
			System:      TransformationPrompt(contact.Name, contact.Context, mode, history),
			User:        message,
			Temperature: s.opts.Temperature,
			MaxTokens:   s.opts.MaxTokens,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get completion: %w", err)
		}

		result.Response = completion.Text
		result.HealingScore = HealingScore(completion.Text)
		result.Sentiment = defaultSentiment
		result.EmotionalState = defaultEmotionalState
		result.Model = completion.Model

		if err := s.cache.Put(ctx, &store.CacheEntry{
			ContactID:      key.ContactID,
			MessageHash:    key.MessageHash,
			UserID:         key.UserID,
			Context:        contact.Context,
			Response:       result.Response,
			HealingScore:   result.HealingScore,
			Model:          result.Model,
			Sentiment:      result.Sentiment,
			EmotionalState: result.EmotionalState,
			CreatedAt:      now,
			ExpiresAt:      now.Add(s.opts.CacheTTL),
		}); err != nil {
			s.log.Warn("Could not cache response", "contact_id", contact.ID, "error", err)
		}
	}
	result.ScoreExplanation = ScoreExplanation(result.HealingScore)

	incoming := &store.Message{
		ContactID:      contact.ID,
		ContactName:    contact.Name,
		UserID:         userID,
		Type:           store.MessageTypeIncoming,
		Original:       message,
		Sentiment:      defaultSentiment,
		EmotionalState: "unknown",
		HealingScore:   0,
		Model:          "N/A",
		CreatedAt:      now,
	}
	if err := s.store.CreateMessage(ctx, incoming); err != nil {
		return nil, err
	}

	response := result.Response
	reply := &store.Message{
		ContactID:      contact.ID,
		ContactName:    contact.Name,
		UserID:         userID,
		Type:           string(mode),
		Original:       message,
		Result:         &response,
		Sentiment:      result.Sentiment,
		EmotionalState: result.EmotionalState,
		HealingScore:   result.HealingScore,
		Model:          result.Model,
		// Keeps the reply ordered after its input.
		CreatedAt: now.Add(time.Microsecond),
	}
	if err := s.store.CreateMessage(ctx, reply); err != nil {
		return nil, err
	}
	result.Message = reply

	s.log.Debug("Processed message", "contact_id", contact.ID, "mode", mode, "cached", result.Cached, "healing_score", result.HealingScore)
	return result, nil
}

type InterpretResult struct {
	Interpretation      string                `json:"interpretation"`
	InterpretationScore int                   `json:"interpretation_score"`
	Model               string                `json:"model"`
	Record              *store.Interpretation `json:"record,omitempty"`
}

// Interpret explains the emotional subtext of a received message. A failure
// to save the interpretation is logged and does not fail the call.
func (s *CoachService) Interpret(ctx context.Context, userID, contactID, message string) (*InterpretResult, error) {
	message = utils.SanitizeInput(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	contact, err := s.contact(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	history, err := s.store.ListMessages(ctx, contact.ID, userID, HistoryLimit)
	if err != nil {
		return nil, err
	}
	completion, err := s.completer.Complete(ctx, CompletionRequest{
		System:      InterpretationPrompt(contact.Name, contact.Context, message, history),
		User:        "Analyze this message: " + message,
		Temperature: interpretTemperature,
		MaxTokens:   interpretMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get interpretation: %w", err)
	}

	result := &InterpretResult{
		Interpretation:      completion.Text,
		InterpretationScore: InterpretationScore(completion.Text),
		Model:               completion.Model,
	}
	record := &store.Interpretation{
		ContactID:           contact.ID,
		ContactName:         contact.Name,
		UserID:              userID,
		OriginalMessage:     message,
		Interpretation:      result.Interpretation,
		InterpretationScore: result.InterpretationScore,
		Model:               result.Model,
		CreatedAt:           s.now(),
	}
	if err := s.store.CreateInterpretation(ctx, record); err != nil {
		s.log.Warn("Could not save interpretation", "contact_id", contact.ID, "error", err)
	} else {
		result.Record = record
	}
	return result, nil
}

// PurgeCache drops every cached response for the contact.
func (s *CoachService) PurgeCache(ctx context.Context, userID, contactID string) (int64, error) {
	if _, err := s.contact(ctx, userID, contactID); err != nil {
		return 0, err
	}
	return s.cache.Purge(ctx, contactID, userID)
}
