package middleware

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterSweepEvery = 5 * time.Minute
	limiterIdleAfter  = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // unix nanos
}

// RateLimit provides per-client token-bucket rate limiting keyed by the
// authenticated player when known, else by client IP. r = requests per
// second, b = burst size. Idle buckets are swept until ctx is done.
func RateLimit(ctx context.Context, r rate.Limit, b int) gin.HandlerFunc {
	limiters := &sync.Map{}

	go func() {
		ticker := time.NewTicker(limiterSweepEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-limiterIdleAfter).UnixNano()
				limiters.Range(func(k, v interface{}) bool {
					if v.(*clientLimiter).lastSeen.Load() < cutoff {
						limiters.Delete(k)
					}
					return true
				})
			}
		}
	}()

	getLimiter := func(key string) *rate.Limiter {
		v, ok := limiters.Load(key)
		if !ok {
			v, _ = limiters.LoadOrStore(key, &clientLimiter{limiter: rate.NewLimiter(r, b)})
		}
		cl := v.(*clientLimiter)
		cl.lastSeen.Store(time.Now().UnixNano())
		return cl.limiter
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id := GetPlayerID(c); id != "" {
			key = "player:" + id
		}
		if !getLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
