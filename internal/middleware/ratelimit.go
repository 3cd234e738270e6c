package middleware

import (
	"strings"
	"sync"
	"time"
)

const (
	// RateLimitWindow is the sliding window in seconds.
	RateLimitWindow = 60
	// RateLimitMaxRequests is the per-IP budget inside the window. Checks
	// fan out into DNS, HTTP and WHOIS traffic, so the budget stays small.
	RateLimitMaxRequests = 8
	// AntiRepeatWindow blocks re-checking the same domain from the same IP
	// for this many seconds. Results do not change that fast.
	AntiRepeatWindow = 15
)

type RateLimitResult struct {
	Allowed     bool
	Reason      string
	WaitSeconds int
}

// RateLimiter is checked by the API handlers before a check is started.
type RateLimiter interface {
	CheckAndRecord(ip, domain string) RateLimitResult
}

type requestEntry struct {
	timestamp float64
	domain    string
}

// InMemoryRateLimiter keeps per-IP sliding windows in process memory. Good
// for a single instance; a fleet would need a shared store behind the same
// interface.
type InMemoryRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]requestEntry
}

func NewInMemoryRateLimiter() *InMemoryRateLimiter {
	limiter := &InMemoryRateLimiter{
		requests: make(map[string][]requestEntry),
	}

	go limiter.cleanupLoop()

	return limiter
}

func (l *InMemoryRateLimiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.mu.Lock()
		now := float64(time.Now().Unix())
		for ip, entries := range l.requests {
			l.requests[ip] = pruneOld(entries, now)
			if len(l.requests[ip]) == 0 {
				delete(l.requests, ip)
			}
		}
		l.mu.Unlock()
	}
}

func pruneOld(entries []requestEntry, now float64) []requestEntry {
	cutoff := now - RateLimitWindow
	result := entries[:0]
	for _, e := range entries {
		if e.timestamp >= cutoff {
			result = append(result, e)
		}
	}
	return result
}

// CheckAndRecord applies the window budget first, then the anti-repeat rule,
// and records the request only when it is allowed.
func (l *InMemoryRateLimiter) CheckAndRecord(ip, domain string) RateLimitResult {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := float64(time.Now().Unix())
	domain = strings.ToLower(domain)

	l.requests[ip] = pruneOld(l.requests[ip], now)
	entries := l.requests[ip]

	if len(entries) >= RateLimitMaxRequests {
		oldest := entries[0].timestamp
		waitSeconds := int(oldest+RateLimitWindow-now) + 1
		if waitSeconds < 1 {
			waitSeconds = 1
		}
		return RateLimitResult{
			Allowed:     false,
			Reason:      "rate_limit",
			WaitSeconds: waitSeconds,
		}
	}

	antiRepeatCutoff := now - AntiRepeatWindow
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].timestamp < antiRepeatCutoff {
			break
		}
		if entries[i].domain == domain {
			waitSeconds := int(entries[i].timestamp+AntiRepeatWindow-now) + 1
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			return RateLimitResult{
				Allowed:     false,
				Reason:      "anti_repeat",
				WaitSeconds: waitSeconds,
			}
		}
	}

	l.requests[ip] = append(entries, requestEntry{
		timestamp: now,
		domain:    domain,
	})

	return RateLimitResult{
		Allowed: true,
		Reason:  "ok",
	}
}
