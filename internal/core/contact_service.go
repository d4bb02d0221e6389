package core

import (
	"context"

	"thirdvoice.ai/third-voice/internal/store"
	"thirdvoice.ai/third-voice/internal/utils"
)

type ContactService struct {
	store *store.SQLStore
}

func NewContactService(s *store.SQLStore) *ContactService {
	return &ContactService{store: s}
}

func validateContact(name, contextKey string) (string, error) {
	name = utils.CleanContactName(name)
	if name == "" {
		return "", ErrInvalidContactName
	}
	if !IsValidContext(contextKey) {
		return "", ErrInvalidContext
	}
	return name, nil
}

func (s *ContactService) List(ctx context.Context, userID string) ([]store.Contact, error) {
	return s.store.ListContacts(ctx, userID)
}

// Create adds a contact. An empty name falls back to the context's default
// name.
func (s *ContactService) Create(ctx context.Context, userID, name, contextKey string) (*store.Contact, error) {
	if c, ok := LookupContext(contextKey); ok && utils.CleanContactName(name) == "" {
		name = c.DefaultName
	}
	name, err := validateContact(name, contextKey)
	if err != nil {
		return nil, err
	}
	return s.store.CreateContact(ctx, userID, name, contextKey)
}

func (s *ContactService) Get(ctx context.Context, userID, contactID string) (*store.Contact, error) {
	contact, err := s.store.GetContact(ctx, contactID, userID)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, store.ErrNotFound
	}
	return contact, nil
}

func (s *ContactService) Update(ctx context.Context, userID, contactID, name, contextKey string) (*store.Contact, error) {
	name, err := validateContact(name, contextKey)
	if err != nil {
		return nil, err
	}
	return s.store.UpdateContact(ctx, contactID, userID, name, contextKey)
}

func (s *ContactService) Delete(ctx context.Context, userID, contactID string) error {
	return s.store.DeleteContact(ctx, contactID, userID)
}

const maxHistoryLimit = HistoryLimit * 4

// History returns up to limit messages in chronological order.
func (s *ContactService) History(ctx context.Context, userID, contactID string, limit int) ([]store.Message, error) {
	if _, err := s.Get(ctx, userID, contactID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = HistoryLimit
	}
	limit = min(limit, maxHistoryLimit)
	return s.store.ListMessages(ctx, contactID, userID, limit)
}
