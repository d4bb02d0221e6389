package core

import (
	"context"
	"strings"

	"thirdvoice.ai/third-voice/internal/store"
)

const defaultFeatureContext = "general"

type FeedbackService struct {
	store *store.SQLStore
}

func NewFeedbackService(s *store.SQLStore) *FeedbackService {
	return &FeedbackService{store: s}
}

func (s *FeedbackService) Submit(ctx context.Context, userID string, rating int, text, featureContext string) (*store.Feedback, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}
	fb := &store.Feedback{
		UserID:         userID,
		Rating:         rating,
		FeatureContext: strings.TrimSpace(featureContext),
	}
	if fb.FeatureContext == "" {
		fb.FeatureContext = defaultFeatureContext
	}
	if t := strings.TrimSpace(text); t != "" {
		fb.FeedbackText = &t
	}
	if err := s.store.CreateFeedback(ctx, fb); err != nil {
		return nil, err
	}
	return fb, nil
}
