package telegram

import (
	"sync"
	"time"

	"github.com/bluele/gcache"
	"golang.org/x/time/rate"
)

const limiterCacheSize = 1000

// userLimiter keeps one token bucket per Telegram user in an LRU cache.
type userLimiter struct {
	cache gcache.Cache
	mu    sync.Mutex
	r     rate.Limit
	b     int
}

func newUserLimiter(r rate.Limit, b int) *userLimiter {
	return &userLimiter{
		cache: gcache.New(limiterCacheSize).LRU().Build(),
		r:     r,
		b:     b,
	}
}

func (u *userLimiter) get(userID int64) *rate.Limiter {
	u.mu.Lock()
	defer u.mu.Unlock()

	if cached, err := u.cache.Get(userID); err == nil {
		return cached.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(u.r, u.b)
	_ = u.cache.SetWithExpire(userID, limiter, 24*time.Hour)
	return limiter
}

// Allow reports whether the user may run another command now.
func (u *userLimiter) Allow(userID int64) bool {
	return u.get(userID).Allow()
}
