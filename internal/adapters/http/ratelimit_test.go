package httpadapter

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skillgap/analyzer/internal/core/domain"
)

func TestRateLimiterAllowsWithinBudget(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{Requests: 3, Window: time.Minute})

	for i := 0; i < 3; i++ {
		if !limiter.allow("uid:u1") {
			t.Fatalf("request %d rejected within budget", i)
		}
	}
	if limiter.allow("uid:u1") {
		t.Fatal("request over budget allowed")
	}
}

func TestRateLimiterIsolatesCallers(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Minute})

	if !limiter.allow("uid:u1") {
		t.Fatal("first caller rejected")
	}
	if limiter.allow("uid:u1") {
		t.Fatal("first caller not limited")
	}
	if !limiter.allow("uid:u2") {
		t.Fatal("second caller throttled by first caller's budget")
	}
}

func TestRateLimiterCleansStaleEntries(t *testing.T) {
	limiter := NewRateLimiter(RateLimitConfig{Requests: 1, Window: 10 * time.Millisecond})

	limiter.allow("uid:stale")
	limiter.entries["uid:stale"].lastSeen = time.Now().Add(-time.Minute)
	limiter.lastCleanup = time.Now().Add(-time.Minute)

	limiter.allow("uid:active")
	if _, ok := limiter.entries["uid:stale"]; ok {
		t.Error("stale entry survived cleanup")
	}
	if _, ok := limiter.entries["uid:active"]; !ok {
		t.Error("active entry removed by cleanup")
	}
}

func TestCallerIdentifierPrefersUserID(t *testing.T) {
	req := httptest.NewRequest("POST", "/v1/analyze", nil)
	ctx := context.WithValue(req.Context(), identityContextKey{}, domain.Identity{UserID: "u42"})
	req = req.WithContext(ctx)

	if got := callerIdentifier(req); got != "uid:u42" {
		t.Errorf("identifier = %q, want uid:u42", got)
	}
}

func TestCallerIdentifierFallsBackToForwardedFor(t *testing.T) {
	req := httptest.NewRequest("POST", "/v1/analyze", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := callerIdentifier(req); got != "ip:203.0.113.9" {
		t.Errorf("identifier = %q, want ip:203.0.113.9", got)
	}
}

func TestCallerIdentifierUsesRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("POST", "/v1/analyze", nil)
	req.RemoteAddr = "198.51.100.7:54321"

	if got := callerIdentifier(req); got != "ip:198.51.100.7" {
		t.Errorf("identifier = %q, want ip:198.51.100.7", got)
	}
}
