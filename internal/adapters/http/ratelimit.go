package httpadapter

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a per-caller token bucket. Callers are keyed by
// verified user ID when available, otherwise by client IP.
type RateLimiter struct {
	cfg RateLimitConfig

	mu          sync.Mutex
	entries     map[string]*limiterEntry
	lastCleanup time.Time
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Requests <= 0 {
		cfg.Requests = 10
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return &RateLimiter{
		cfg:         cfg,
		entries:     make(map[string]*limiterEntry),
		lastCleanup: time.Now(),
	}
}

func (l *RateLimiter) allow(identifier string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.entries[identifier]
	if !ok {
		entry = &limiterEntry{
			limiter: rate.NewLimiter(rate.Every(l.cfg.Window/time.Duration(l.cfg.Requests)), l.cfg.Requests),
		}
		l.entries[identifier] = entry
	}
	entry.lastSeen = now

	l.maybeCleanup(now)
	return entry.limiter.Allow()
}

// maybeCleanup drops entries idle for longer than three windows. Runs
// at most once per window; caller holds the mutex.
func (l *RateLimiter) maybeCleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < l.cfg.Window {
		return
	}
	l.lastCleanup = now

	cutoff := now.Add(-3 * l.cfg.Window)
	for identifier, entry := range l.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(l.entries, identifier)
		}
	}
}

func (rt *Router) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rt.limiter.allow(callerIdentifier(r)) {
			next.ServeHTTP(w, r)
			return
		}

		if rt.metrics != nil {
			rt.metrics.RecordRateLimitRejection(rt.service, r.URL.Path)
		}
		retryAfter := int(rt.limiter.cfg.Window.Seconds())
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":       "rate limit exceeded. Please try again later",
			"retry_after": retryAfter,
		})
	})
}

func callerIdentifier(r *http.Request) string {
	if identity, ok := identityFromContext(r.Context()); ok && identity.UserID != "" {
		return "uid:" + identity.UserID
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return "ip:" + strings.TrimSpace(first)
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return "ip:" + host
	}
	return "ip:" + r.RemoteAddr
}
