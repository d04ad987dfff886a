package folio

import (
	"sync"
	"time"
)

// LoginLimiter throttles admin login attempts per client IP using a fixed
// window: once an IP has spent its budget, further attempts are rejected
// until the window that started with its first attempt expires.
type LoginLimiter struct {
	mu      sync.Mutex
	buckets map[string]*loginBucket
	budget  int
	window  time.Duration
}

type loginBucket struct {
	count   int
	started time.Time
}

// NewLoginLimiter allows budget attempts per IP within each window.
func NewLoginLimiter(budget int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		buckets: make(map[string]*loginBucket),
		budget:  budget,
		window:  window,
	}
}

// Allow records an attempt for ip and reports whether it is within budget.
func (l *LoginLimiter) Allow(ip string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)

	b := l.buckets[ip]
	if b == nil || now.Sub(b.started) >= l.window {
		l.buckets[ip] = &loginBucket{count: 1, started: now}
		return true
	}
	b.count++
	return b.count <= l.budget
}

// prune drops expired buckets so the map stays proportional to the number
// of IPs seen in the last window. Caller holds l.mu.
func (l *LoginLimiter) prune(now time.Time) {
	for ip, b := range l.buckets {
		if now.Sub(b.started) >= l.window {
			delete(l.buckets, ip)
		}
	}
}
