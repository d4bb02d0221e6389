package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"thirdvoice.ai/third-voice/internal/auth"
	"thirdvoice.ai/third-voice/internal/store"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

type AuthService struct {
	store      *store.SQLStore
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

func NewAuthService(s *store.SQLStore, secret []byte, sessionTTL time.Duration) *AuthService {
	return &AuthService{store: s, secret: secret, sessionTTL: sessionTTL, now: time.Now}
}

type SignInResult struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expires_at"`
	User      *store.User    `json:"user"`
	Session   *store.Session `json:"session"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) SignUp(ctx context.Context, email, password string) (*store.User, error) {
	email = normalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}
	if len(password) > maxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.CreateUser(ctx, email, hash)
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	user, err := s.store.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}
	if user == nil || !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	session, err := s.store.CreateSession(ctx, user.ID, now, now.Add(s.sessionTTL))
	if err != nil {
		return nil, err
	}
	token, err := auth.GenerateJWT(s.secret, user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &SignInResult{Token: token, ExpiresAt: session.ExpiresAt, User: user, Session: session}, nil
}

func (s *AuthService) SignOut(ctx context.Context, sessionID string) error {
	return s.store.DeleteSession(ctx, sessionID)
}

// GetSession returns the live session and its user.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*store.Session, *store.User, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}
	if session == nil || !session.ExpiresAt.After(s.now()) {
		return nil, nil, ErrSessionNotFound
	}
	user, err := s.store.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrSessionNotFound
	}
	return session, user, nil
}

// Authenticate validates a bearer token and resolves it to a live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*store.Session, *store.User, error) {
	claims, err := auth.ValidateJWT(s.secret, token)
	if err != nil {
		return nil, nil, err
	}
	session, user, err := s.GetSession(ctx, claims.SessionID)
	if err != nil {
		return nil, nil, err
	}
	if user.ID != claims.UserID {
		return nil, nil, errors.Join(auth.ErrInvalidToken, ErrSessionNotFound)
	}
	return session, user, nil
}
