package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// loginLimiter throttles credential checks per client IP so password
// guessing cannot run unbounded. Entries idle longer than an hour are
// dropped opportunistically.
type loginLimiter struct {
	mu      sync.Mutex
	perIP   map[string]*limiterEntry
	rate    rate.Limit
	burst   int
	lastGC  time.Time
	gcEvery time.Duration
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newLoginLimiter(perMinute int, burst int) *loginLimiter {
	return &loginLimiter{
		perIP:   make(map[string]*limiterEntry),
		rate:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		lastGC:  time.Now(),
		gcEvery: 10 * time.Minute,
	}
}

func (l *loginLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastGC) > l.gcEvery {
		for k, e := range l.perIP {
			if now.Sub(e.lastSeen) > time.Hour {
				delete(l.perIP, k)
			}
		}
		l.lastGC = now
	}

	e, ok := l.perIP[ip]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.perIP[ip] = e
	}
	e.lastSeen = now
	return e.limiter.Allow()
}
