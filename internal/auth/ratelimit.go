package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/mrlokans/bookcatalog/internal/config"
)

// RateLimiter throttles failed logins per client IP and email. Once an
// identity reaches the attempt limit inside the window it stays locked
// until the lockout expires.
type RateLimiter struct {
	mu       sync.Mutex
	failures map[string]*failureWindow
	limit    int
	window   time.Duration
	lockout  time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type failureWindow struct {
	count       int
	startedAt   time.Time
	lockedUntil time.Time
}

// RateLimitConfig contains configuration for the rate limiter.
type RateLimitConfig struct {
	MaxAttempts     int
	WindowDuration  time.Duration
	LockoutDuration time.Duration
	CleanupInterval time.Duration // zero disables the sweeper
}

// RateLimitConfigFrom maps the auth settings onto limiter settings.
func RateLimitConfigFrom(cfg config.Auth) RateLimitConfig {
	return RateLimitConfig{
		MaxAttempts:     cfg.MaxLoginAttempts,
		WindowDuration:  cfg.RateLimitWindow,
		LockoutDuration: cfg.LockoutDuration,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewRateLimiter creates a limiter. Non-positive values fall back to
// 5 attempts in 15 minutes with a 30 minute lockout.
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.WindowDuration <= 0 {
		cfg.WindowDuration = 15 * time.Minute
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = 30 * time.Minute
	}

	rl := &RateLimiter{
		failures: make(map[string]*failureWindow),
		limit:    cfg.MaxAttempts,
		window:   cfg.WindowDuration,
		lockout:  cfg.LockoutDuration,
		now:      time.Now,
		stop:     make(chan struct{}),
	}

	if cfg.CleanupInterval > 0 {
		go rl.sweep(cfg.CleanupInterval)
	}
	return rl
}

// Stop halts the background sweeper. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

func key(ip, email string) string {
	return ip + "|" + strings.ToLower(email)
}

// Allow reports whether a login attempt may proceed and, if not, how long
// until the lockout ends.
func (rl *RateLimiter) Allow(ip, email string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.failures[key(ip, email)]
	if !ok {
		return true, 0
	}
	if now.Before(w.lockedUntil) {
		return false, w.lockedUntil.Sub(now)
	}
	if now.Sub(w.startedAt) > rl.window {
		return true, 0
	}
	return w.count < rl.limit, 0
}

// RecordFailure counts a failed attempt and reports whether it triggered
// a lockout.
func (rl *RateLimiter) RecordFailure(ip, email string) bool {
	now := rl.now()
	k := key(ip, email)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.failures[k]
	if !ok || (now.Sub(w.startedAt) > rl.window && !now.Before(w.lockedUntil)) {
		w = &failureWindow{startedAt: now}
		rl.failures[k] = w
	}

	w.count++
	if w.count >= rl.limit {
		w.lockedUntil = now.Add(rl.lockout)
		return true
	}
	return false
}

// RecordSuccess forgets earlier failures for the identity.
func (rl *RateLimiter) RecordSuccess(ip, email string) {
	rl.mu.Lock()
	delete(rl.failures, key(ip, email))
	rl.mu.Unlock()
}

func (rl *RateLimiter) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.purge()
		case <-rl.stop:
			return
		}
	}
}

func (rl *RateLimiter) purge() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for k, w := range rl.failures {
		if now.Sub(w.startedAt) > rl.window && !now.Before(w.lockedUntil) {
			delete(rl.failures, k)
		}
	}
}
