// Package ratelimit meters API requests with token buckets. Each route tier
// has its own budget, keyed on the client IP or on the authenticated user.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Request is what the limiter needs to know about an incoming call.
type Request struct {
	Method   string
	Path     string
	ClientIP string
	// UserID is the authenticated user, empty for anonymous requests
	UserID string
}

// Decision is the outcome for one request.
type Decision struct {
	Allowed bool
	// Tier is empty for exempt routes and when limiting is disabled
	Tier       string
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limited reports whether the request was metered at all
func (d Decision) Limited() bool {
	return d.Tier != "" && d.Limit > 0
}

type bucket struct {
	tokens float64
	last   time.Time
	rate   float64
	cap    float64
}

// refill must be called with the limiter lock held
func (b *bucket) refill(now time.Time) {
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(b.cap, b.tokens+elapsed*b.rate)
	}
	b.last = now
}

func (b *bucket) untilFull() time.Duration {
	return seconds((b.cap - b.tokens) / b.rate)
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Ceil(s * float64(time.Second)))
}

// Limiter is safe for concurrent use. Call Stop to end the sweep goroutine.
type Limiter struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter creates a limiter. A nil config disables limiting.
func NewLimiter(cfg *Config) *Limiter {
	return newLimiter(cfg, time.Now)
}

func newLimiter(cfg *Config, now func() time.Time) *Limiter {
	if cfg == nil {
		cfg = &Config{}
	}
	l := &Limiter{
		cfg:     *cfg,
		now:     now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if cfg.Enabled && cfg.SweepInterval > 0 {
		go l.sweepLoop(cfg.SweepInterval)
	}
	return l
}

// Allow meters one request.
func (l *Limiter) Allow(req Request) Decision {
	if !l.cfg.Enabled {
		return Decision{Allowed: true}
	}
	tier := l.cfg.tierFor(req.Method, req.Path)
	if tier == nil || contains(l.cfg.Allow, req.ClientIP) {
		return Decision{Allowed: true}
	}
	if contains(l.cfg.Deny, req.ClientIP) {
		return Decision{Tier: tier.Name, Limit: tier.Rate}
	}
	if tier.Rate <= 0 || tier.Window <= 0 {
		return Decision{Allowed: true}
	}

	key := tier.Name + "|" + subject(tier, req)
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: tier.capacity(), last: now, rate: tier.perSecond(), cap: tier.capacity()}
		l.buckets[key] = b
	}
	b.refill(now)

	d := Decision{Tier: tier.Name, Limit: tier.Rate}
	if b.tokens >= 1 {
		b.tokens--
		d.Allowed = true
	} else {
		d.RetryAfter = seconds((1 - b.tokens) / b.rate)
	}
	d.Remaining = int(b.tokens)
	d.ResetAt = now.Add(b.untilFull())
	return d
}

func subject(t *Tier, req Request) string {
	if t.Scope == ScopeUser && req.UserID != "" {
		return "user:" + req.UserID
	}
	return "ip:" + req.ClientIP
}

func (l *Limiter) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets that have refilled; a fresh bucket is identical.
// It returns how many were dropped.
func (l *Limiter) sweep() int {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	dropped := 0
	for key, b := range l.buckets {
		b.refill(now)
		if b.tokens >= b.cap {
			delete(l.buckets, key)
			dropped++
		}
	}
	return dropped
}

func (l *Limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
