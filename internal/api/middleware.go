package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"thirdvoice.ai/third-voice/internal/logger"
	"thirdvoice.ai/third-voice/internal/store"
)

type ctxKey int

const (
	userKey ctxKey = iota
	sessionKey
)

func userFrom(ctx context.Context) *store.User {
	u, _ := ctx.Value(userKey).(*store.User)
	return u
}

func sessionFrom(ctx context.Context) *store.Session {
	s, _ := ctx.Value(sessionKey).(*store.Session)
	return s
}

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, NewError(http.StatusUnauthorized, "unauthorized", errors.New("authorization header is required")))
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		session, user, err := h.auth.Authenticate(r.Context(), tokenString)
		if err != nil {
			h.fail(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, sessionKey, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger logs one line per request at a level chosen by status.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			kv := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			}
			switch status := ww.Status(); {
			case status >= 500:
				log.Error("Request failed", kv...)
			case status >= 400:
				log.Warn("Request rejected", kv...)
			default:
				log.Info("Request served", kv...)
			}
		})
	}
}

// A limiter idle this long has refilled its whole burst.
const limiterIdleTTL = time.Hour

// RateLimiter allows each user perHour requests per hour, refilled evenly.
// Limiters idle for limiterIdleTTL are evicted, so the map holds at most the
// users seen in the last hour or so.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*userLimiter
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type userLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(perHour int) *RateLimiter {
	if perHour <= 0 {
		perHour = 1
	}
	return &RateLimiter{
		limiters:  make(map[string]*userLimiter),
		limit:     rate.Limit(float64(perHour) / time.Hour.Seconds()),
		burst:     perHour,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) >= limiterIdleTTL {
		l.evictIdle(now)
	}
	ul, ok := l.limiters[key]
	if !ok {
		ul = &userLimiter{lim: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = ul
	}
	ul.lastSeen = now
	l.mu.Unlock()

	return ul.lim.AllowN(now, 1)
}

// evictIdle must be called with mu held.
func (l *RateLimiter) evictIdle(now time.Time) {
	for key, ul := range l.limiters {
		if now.Sub(ul.lastSeen) >= limiterIdleTTL {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

// Middleware must run after JWTAuthMiddleware.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.RemoteAddr
		if u := userFrom(r.Context()); u != nil {
			key = u.ID
		}
		if !l.Allow(key) {
			w.Header().Set("Retry-After", "60")
			respondError(w, NewError(http.StatusTooManyRequests, "rate_limited", errors.New("too many requests, please slow down")))
			return
		}
		next.ServeHTTP(w, r)
	})
}
