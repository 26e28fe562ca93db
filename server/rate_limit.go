package server

import (
	"container/list"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	defaultMaxRateLimitEntries = 10000
	rateLimitIdleTimeout       = 10 * time.Minute
)

type rateLimiterEntry struct {
	identifier string
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter is a per-identifier token bucket. The least recently seen identifier is evicted
// once maxEntries is reached, and idle entries are swept as requests arrive.
type RateLimiter struct {
	mu          sync.Mutex
	limiters    map[string]*list.Element
	lruList     *list.List
	rate        rate.Limit
	burst       int
	maxEntries  int
	nowTime     func() time.Time
	lastCleanup time.Time
}

type RateLimiterOption func(*RateLimiter)

// WithRateLimiterClock sets the clock used for token refill and idle sweeps (primarily for testing)
func WithRateLimiterClock(nowFunc func() time.Time) RateLimiterOption {
	return func(rl *RateLimiter) {
		rl.nowTime = nowFunc
	}
}

// WithMaxEntries bounds the number of identifiers tracked at once.
func WithMaxEntries(maxEntries int) RateLimiterOption {
	return func(rl *RateLimiter) {
		if maxEntries > 0 {
			rl.maxEntries = maxEntries
		}
	}
}

func NewRateLimiter(requestsPerSecond float64, burst int, options ...RateLimiterOption) *RateLimiter {
	rl := &RateLimiter{
		limiters:   make(map[string]*list.Element),
		lruList:    list.New(),
		rate:       rate.Limit(requestsPerSecond),
		burst:      burst,
		maxEntries: defaultMaxRateLimitEntries,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(rl)
	}
	rl.lastCleanup = rl.nowTime()
	return rl
}

// Allow reports whether identifier may make another request now.
func (rl *RateLimiter) Allow(identifier string) bool {
	now := rl.nowTime()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastCleanup) >= rateLimitIdleTimeout {
		rl.cleanupLocked(now)
	}

	if elem, exists := rl.limiters[identifier]; exists {
		rl.lruList.MoveToFront(elem)
		entry := elem.Value.(*rateLimiterEntry)
		entry.lastAccess = now
		return entry.limiter.AllowN(now, 1)
	}

	if len(rl.limiters) >= rl.maxEntries {
		rl.evictLRULocked()
	}

	entry := &rateLimiterEntry{
		identifier: identifier,
		limiter:    rate.NewLimiter(rl.rate, rl.burst),
		lastAccess: now,
	}
	rl.limiters[identifier] = rl.lruList.PushFront(entry)

	return entry.limiter.AllowN(now, 1)
}

// Len returns the number of identifiers currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limiters)
}

func (rl *RateLimiter) evictLRULocked() {
	elem := rl.lruList.Back()
	if elem == nil {
		return
	}
	entry := elem.Value.(*rateLimiterEntry)
	delete(rl.limiters, entry.identifier)
	rl.lruList.Remove(elem)
	log.Debug().Str("identifier", entry.identifier).Int("entries", len(rl.limiters)).Msg("Rate limiter LRU eviction")
}

// cleanupLocked drops entries idle for longer than rateLimitIdleTimeout. The LRU list is
// ordered by last access, so the sweep stops at the first live entry.
func (rl *RateLimiter) cleanupLocked(now time.Time) {
	rl.lastCleanup = now
	for elem := rl.lruList.Back(); elem != nil; {
		entry := elem.Value.(*rateLimiterEntry)
		if now.Sub(entry.lastAccess) < rateLimitIdleTimeout {
			return
		}
		prev := elem.Prev()
		delete(rl.limiters, entry.identifier)
		rl.lruList.Remove(elem)
		elem = prev
	}
}
