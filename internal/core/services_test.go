package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thirdvoice.ai/third-voice/internal/auth"
	"thirdvoice.ai/third-voice/internal/cache"
	"thirdvoice.ai/third-voice/internal/logger"
	"thirdvoice.ai/third-voice/internal/store"
)

type fakeCompleter struct {
	mu       sync.Mutex
	text     string
	err      error
	requests []CompletionRequest
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (Completion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return Completion{}, f.err
	}
	return Completion{Text: f.text, Model: "fake-model"}, nil
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type failingCache struct{}

func (failingCache) Get(context.Context, cache.Key, time.Time) (*store.CacheEntry, error) {
	return nil, errors.New("cache down")
}
func (failingCache) Put(context.Context, *store.CacheEntry) error { return errors.New("cache down") }
func (failingCache) Purge(context.Context, string, string) (int64, error) {
	return 0, errors.New("cache down")
}

type fixture struct {
	store     *store.SQLStore
	completer *fakeCompleter
	coach     *CoachService
	contacts  *ContactService
	user      *store.User
	contact   *store.Contact
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s, err := store.NewSQLStore(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	user, err := s.CreateUser(ctx, "parent@example.com", "hash")
	require.NoError(t, err)

	f := &fixture{
		store:     s,
		completer: &fakeCompleter{text: "I understand how much you care. Let's talk tonight."},
		contacts:  NewContactService(s),
		user:      user,
	}
	f.coach = NewCoachService(s, cache.NewTableCache(s), f.completer, logger.Nop(), CoachOptions{
		Temperature: 0.7,
		MaxTokens:   500,
		CacheTTL:    24 * time.Hour,
	})
	f.contact, err = f.contacts.Create(ctx, user.ID, "sam", "coparenting")
	require.NoError(t, err)
	return f
}

func TestCoachService_ProcessCoach(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	res, err := f.coach.Process(ctx, f.user.ID, f.contact.ID, "  I can't believe you forgot again  ")
	require.NoError(t, err)
	assert.Equal(t, ModeCoach, res.Mode)
	assert.False(t, res.Cached)
	assert.Equal(t, 7, res.HealingScore)
	assert.Equal(t, ScoreExplanation(7), res.ScoreExplanation)
	assert.Equal(t, "fake-model", res.Model)

	require.Equal(t, 1, f.completer.calls())
	req := f.completer.requests[0]
	assert.Equal(t, "I can't believe you forgot again", req.User)
	assert.Contains(t, req.System, "co-parenting relationship with Sam")
	assert.Equal(t, 500, req.MaxTokens)

	history, err := f.contacts.History(ctx, f.user.ID, f.contact.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, store.MessageTypeIncoming, history[0].Type)
	assert.Nil(t, history[0].Result)
	assert.Equal(t, "unknown", history[0].EmotionalState)
	assert.Equal(t, 0, history[0].HealingScore)
	assert.Equal(t, "N/A", history[0].Model)
	assert.Equal(t, store.MessageTypeCoach, history[1].Type)
	require.NotNil(t, history[1].Result)
	assert.Equal(t, res.Response, *history[1].Result)
}

func TestCoachService_ProcessUsesCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.coach.Process(ctx, f.user.ID, f.contact.ID, "She said: you never listen")
	require.NoError(t, err)
	assert.Equal(t, ModeTranslate, first.Mode)

	second, err := f.coach.Process(ctx, f.user.ID, f.contact.ID, "she said: YOU NEVER LISTEN ")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Response, second.Response)
	assert.Equal(t, 1, f.completer.calls())

	history, err := f.contacts.History(ctx, f.user.ID, f.contact.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history, 4)
}

func TestCoachService_ExpiredCacheCallsCompleter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.coach.Process(ctx, f.user.ID, f.contact.ID, "hello")
	require.NoError(t, err)

	f.coach.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	res, err := f.coach.Process(ctx, f.user.ID, f.contact.ID, "hello")
	require.NoError(t, err)
	assert.False(t, res.Cached)
	assert.Equal(t, 2, f.completer.calls())
}

func TestCoachService_CacheFailureDoesNotFailRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.coach.cache = failingCache{}

	res, err := f.coach.Process(ctx, f.user.ID, f.contact.ID, "hello")
	require.NoError(t, err)
	assert.False(t, res.Cached)
}

func TestCoachService_ProcessErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.coach.Process(ctx, f.user.ID, f.contact.ID, "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = f.coach.Process(ctx, "another-user", f.contact.ID, "hello")
	assert.ErrorIs(t, err, store.ErrNotFound)

	f.completer.err = ErrCompletionTimeout
	_, err = f.coach.Process(ctx, f.user.ID, f.contact.ID, "hello")
	assert.ErrorIs(t, err, ErrCompletionTimeout)

	history, err := f.contacts.History(ctx, f.user.ID, f.contact.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestCoachService_Interpret(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.completer.text = "**🌱 HEALING OPPORTUNITIES** They feel hurt."

	res, err := f.coach.Interpret(ctx, f.user.ID, f.contact.ID, "You're always late")
	require.NoError(t, err)
	assert.Equal(t, 9, res.InterpretationScore)
	require.NotNil(t, res.Record)
	assert.NotEmpty(t, res.Record.ID)

	req := f.completer.requests[0]
	assert.Equal(t, "Analyze this message: You're always late", req.User)
	assert.Equal(t, 400, req.MaxTokens)
}

func TestCoachService_PurgeCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.coach.Process(ctx, f.user.ID, f.contact.ID, "hello")
	require.NoError(t, err)

	n, err := f.coach.PurgeCache(ctx, f.user.ID, f.contact.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = f.coach.PurgeCache(ctx, "another-user", f.contact.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContactService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	assert.Equal(t, "Sam", f.contact.Name)

	_, err := f.contacts.Create(ctx, f.user.ID, "SAM", "family")
	assert.ErrorIs(t, err, store.ErrDuplicateContact)

	_, err = f.contacts.Create(ctx, f.user.ID, "Jo", "enemy")
	assert.ErrorIs(t, err, ErrInvalidContext)

	def, err := f.contacts.Create(ctx, f.user.ID, "  ", "workplace")
	require.NoError(t, err)
	assert.Equal(t, "Colleague", def.Name)

	_, err = f.contacts.Update(ctx, f.user.ID, f.contact.ID, "", "family")
	assert.ErrorIs(t, err, ErrInvalidContactName)

	updated, err := f.contacts.Update(ctx, f.user.ID, f.contact.ID, "samantha", "family")
	require.NoError(t, err)
	assert.Equal(t, "Samantha", updated.Name)

	list, err := f.contacts.List(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, f.contacts.Delete(ctx, f.user.ID, f.contact.ID))
	_, err = f.contacts.Get(ctx, f.user.ID, f.contact.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAuthService(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLStore(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	secret := []byte("test-secret")
	svc := NewAuthService(s, secret, time.Hour)

	_, err = svc.SignUp(ctx, "not-an-email", "secret123")
	assert.ErrorIs(t, err, ErrInvalidEmail)
	_, err = svc.SignUp(ctx, "a@example.com", "123")
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = svc.SignUp(ctx, "a@example.com", strings.Repeat("p", 80))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	_, err = svc.SignUp(ctx, "edge@example.com", strings.Repeat("p", 72))
	assert.NoError(t, err)

	user, err := svc.SignUp(ctx, "  A@Example.com ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)

	_, err = svc.SignUp(ctx, "a@example.com", "secret123")
	assert.ErrorIs(t, err, store.ErrEmailTaken)

	_, err = svc.SignIn(ctx, "a@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.SignIn(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	signIn, err := svc.SignIn(ctx, "A@example.com", "secret123")
	require.NoError(t, err)
	assert.NotEmpty(t, signIn.Token)

	session, authUser, err := svc.Authenticate(ctx, signIn.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authUser.ID)
	assert.Equal(t, signIn.Session.ID, session.ID)

	require.NoError(t, svc.SignOut(ctx, session.ID))
	_, _, err = svc.Authenticate(ctx, signIn.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, _, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_ExpiredSession(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewSQLStore(store.DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer s.Close()

	svc := NewAuthService(s, []byte("k"), time.Hour)
	_, err = svc.SignUp(ctx, "a@example.com", "secret123")
	require.NoError(t, err)
	signIn, err := svc.SignIn(ctx, "a@example.com", "secret123")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = svc.GetSession(ctx, signIn.Session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestFeedbackService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewFeedbackService(f.store)

	_, err := svc.Submit(ctx, f.user.ID, 0, "bad", "")
	assert.ErrorIs(t, err, ErrInvalidRating)
	_, err = svc.Submit(ctx, f.user.ID, 6, "bad", "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	fb, err := svc.Submit(ctx, f.user.ID, 5, "  lovely  ", "")
	require.NoError(t, err)
	assert.Equal(t, "general", fb.FeatureContext)
	require.NotNil(t, fb.FeedbackText)
	assert.Equal(t, "lovely", *fb.FeedbackText)

	blank, err := svc.Submit(ctx, f.user.ID, 3, "   ", "interpret")
	require.NoError(t, err)
	assert.Nil(t, blank.FeedbackText)
}

func TestInsightsService(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := NewInsightsService(f.store)

	for i := 0; i < 3; i++ {
		_, err := f.coach.Process(ctx, f.user.ID, f.contact.ID, "message "+string(rune('a'+i)))
		require.NoError(t, err)
	}

	in, err := svc.ForContact(ctx, f.user.ID, f.contact.ID)
	require.NoError(t, err)
	assert.Equal(t, 7.0, in.HealthScore)
	assert.Contains(t, in.HealthStatus, "Growing")
	assert.Equal(t, ContextTips("coparenting"), in.Tips)

	_, err = svc.ForContact(ctx, "another-user", f.contact.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	stats, err := svc.Stats(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ContactCount)
	assert.Equal(t, 6, stats.MessageCount)
	assert.InDelta(t, 7.0, stats.AvgHealingScore, 0.001)
}

func TestContactService_HistoryLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	start := time.Now().Add(-time.Hour)
	for i := 0; i < maxHistoryLimit+10; i++ {
		result := "reply"
		require.NoError(t, f.store.CreateMessage(ctx, &store.Message{
			ContactID:      f.contact.ID,
			ContactName:    f.contact.Name,
			UserID:         f.user.ID,
			Type:           string(ModeCoach),
			Original:       fmt.Sprintf("message %d", i),
			Result:         &result,
			Sentiment:      "improved",
			EmotionalState: "calm",
			HealingScore:   6,
			Model:          "fake-model",
			CreatedAt:      start.Add(time.Duration(i) * time.Second),
		}))
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, HistoryLimit},
		{-3, HistoryLimit},
		{10, 10},
		{maxHistoryLimit, maxHistoryLimit},
		{1000, maxHistoryLimit},
	}
	for _, tt := range tests {
		history, err := f.contacts.History(ctx, f.user.ID, f.contact.ID, tt.limit)
		require.NoError(t, err)
		assert.Len(t, history, tt.want, "limit %d", tt.limit)
	}
}
