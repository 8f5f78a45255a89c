// internal/app/system/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apiresp"
	"github.com/sahilshivekar/team23-ngo-backend/internal/app/system/apperr"
	"golang.org/x/time/rate"
)

// Limiter is a per-key token bucket. It is safe for concurrent use.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New allows perMinute requests per key with the given burst.
func New(perMinute, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		rate:    rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		idle:    10 * time.Minute,
		now:     time.Now,
	}
}

// Allow reports whether a request for key may proceed, and if not, how long
// to wait.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.sweep(now)
	l.mu.Unlock()

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, 0
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Reset forgets key, e.g. after a successful login.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.buckets, key)
}

// sweep drops idle buckets. Caller holds mu.
func (l *Limiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.idle {
			delete(l.buckets, k)
		}
	}
}

// Middleware rejects requests over the per-IP limit with 429.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok, wait := l.Allow(ClientIP(r)); !ok {
			TooMany(w, wait, "Too many requests. Please try again later.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TooMany writes a 429 with Retry-After.
func TooMany(w http.ResponseWriter, wait time.Duration, message string) {
	secs := int(wait.Seconds()) + 1
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	apiresp.Error(w, apperr.RateLimited(message))
}

// ClientIP extracts the client IP from an HTTP request.
// It checks X-Forwarded-For and X-Real-IP headers first (for proxied requests),
// then falls back to RemoteAddr.
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
		return r.RemoteAddr
	}
	return ip
}

// LoginLimiter throttles login attempts per client IP and per account
// identifier, so neither a single client nor a distributed attack on one
// account can brute-force passwords.
type LoginLimiter struct {
	ip      *Limiter
	account *Limiter
}

// NewLoginLimiter allows ipPerMinute attempts per IP and a fifth of that per
// account, each with burst.
func NewLoginLimiter(ipPerMinute, burst int) *LoginLimiter {
	accountRate := ipPerMinute / 5
	if accountRate < 1 {
		accountRate = 1
	}
	return &LoginLimiter{
		ip:      New(ipPerMinute, burst),
		account: New(accountRate, burst),
	}
}

// Check reports whether the attempt may proceed; when it may not, the wait
// and a client-facing reason are returned.
func (ll *LoginLimiter) Check(r *http.Request, account string) (bool, time.Duration, string) {
	if ok, wait := ll.ip.Allow(ClientIP(r)); !ok {
		return false, wait, "Too many login attempts. Please wait a minute before trying again."
	}
	if key := accountKey(account); key != "" {
		if ok, wait := ll.account.Allow(key); !ok {
			return false, wait, "Too many login attempts for this account. Please wait a few minutes."
		}
	}
	return true, 0, ""
}

// ResetAccount clears the account limit after a successful login.
func (ll *LoginLimiter) ResetAccount(account string) {
	if key := accountKey(account); key != "" {
		ll.account.Reset(key)
	}
}

func accountKey(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}
