// Package ratelimit throttles the two unauthenticated write surfaces:
// login attempts and application-wizard saves. Counting is fixed-window
// per key, kept entirely in memory; a restart forgives everyone, which
// is acceptable for abuse control on a single-instance deployment.
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/trovehq/trovehub/internal/app/system/httpjson"
	"github.com/trovehq/trovehub/internal/app/system/normalize"
)

// Limiter counts hits per key within a rolling window. Safe for
// concurrent use.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	limit    int
	duration time.Duration
	sweep    time.Duration
}

type bucket struct {
	hits    int
	resetAt time.Time
}

// New returns a limiter allowing limit hits per key per duration.
// A background sweeper drops stale buckets so long-running processes
// do not accumulate one entry per IP ever seen.
func New(limit int, duration time.Duration) *Limiter {
	l := &Limiter{
		buckets:  make(map[string]*bucket),
		limit:    limit,
		duration: duration,
		sweep:    duration * 2,
	}
	go l.sweeper()
	return l
}

// Allow records a hit for key and reports whether it fit inside the
// current window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		l.buckets[key] = &bucket{hits: 1, resetAt: now.Add(l.duration)}
		return true
	}
	if b.hits >= l.limit {
		return false
	}
	b.hits++
	return true
}

// Remaining reports how many hits key has left in its current window.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || time.Now().After(b.resetAt) {
		return l.limit
	}
	if left := l.limit - b.hits; left > 0 {
		return left
	}
	return 0
}

// Reset forgets key entirely, starting it on a fresh window.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// Middleware limits requests per client IP, answering 429 with the
// standard error envelope once the window is exhausted. The wizard's
// write routes mount this so an applicant script cannot hammer saves.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(ClientIP(r)) {
			httpjson.Error(w, http.StatusTooManyRequests, "too many requests, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) sweeper() {
	ticker := time.NewTicker(l.sweep)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		for key, b := range l.buckets {
			if now.After(b.resetAt) {
				delete(l.buckets, key)
			}
		}
		l.mu.Unlock()
	}
}

// ClientIP resolves the address to rate-limit on. Behind the reverse
// proxy the real client is the first X-Forwarded-For entry; X-Real-IP
// is the fallback, then RemoteAddr with its port stripped.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr may arrive without a port in tests.
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter guards the password login endpoint on two axes: per IP,
// so one host cannot spray the whole user base, and per account email,
// so a distributed guess against a single admin or agent account still
// locks out quickly.
type LoginLimiter struct {
	ipLimiter    *Limiter
	emailLimiter *Limiter
}

// NewLoginLimiter returns the production configuration: 10 attempts
// per IP per minute and 5 attempts per account per 5 minutes.
func NewLoginLimiter() *LoginLimiter {
	return NewLoginLimiterWithConfig(10, time.Minute, 5, 5*time.Minute)
}

// NewLoginLimiterWithConfig builds a login limiter with explicit
// windows; tests use short ones.
func NewLoginLimiterWithConfig(ipLimit int, ipDuration time.Duration, emailLimit int, emailDuration time.Duration) *LoginLimiter {
	return &LoginLimiter{
		ipLimiter:    New(ipLimit, ipDuration),
		emailLimiter: New(emailLimit, emailDuration),
	}
}

// Check records a login attempt and reports whether it may proceed.
// When blocked, reason is the message returned to the client. The IP
// axis is consulted first so an exhausted address never burns the
// account's budget. Email keys use the same fold as the user store, so
// case variants of one address share a window.
func (ll *LoginLimiter) Check(r *http.Request, email string) (bool, string) {
	if !ll.ipLimiter.Allow(ClientIP(r)) {
		return false, "Too many login attempts. Please wait a minute before trying again."
	}
	if email != "" {
		if !ll.emailLimiter.Allow(normalize.Email(email)) {
			return false, "Too many login attempts for this account. Please wait a few minutes."
		}
	}
	return true, ""
}

// ResetEmail clears the account window after a successful login, so a
// user who mistyped a few times is not penalized once they get in.
func (ll *LoginLimiter) ResetEmail(email string) {
	if email != "" {
		ll.emailLimiter.Reset(normalize.Email(email))
	}
}
