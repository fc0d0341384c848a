package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/api"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientBucket pairs a token bucket with the last time its IP was seen,
// so idle entries can be swept out of the map.
type clientBucket struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP. Buckets idle
// longer than ttl are dropped on the next sweep.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	limit   rate.Limit
	burst   int
	ttl     time.Duration
}

func NewRateLimiter(rps float64, burst int, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientBucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
	}

	go func() {
		for range time.Tick(time.Minute) {
			rl.sweep(time.Now())
		}
	}()

	return rl
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, cb := range rl.clients {
		if now.Sub(cb.lastSeen) > rl.ttl {
			delete(rl.clients, ip)
		}
	}
}

// Allow consumes one token from the IP's bucket, creating the bucket on
// first sight.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	cb, ok := rl.clients[ip]
	if !ok {
		cb = &clientBucket{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = cb
	}
	cb.lastSeen = time.Now()
	rl.mu.Unlock()

	return cb.bucket.Allow()
}

func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := NewRateLimiter(rps, burst, 3*time.Minute)

	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.JSON(http.StatusTooManyRequests, api.ErrorResponse{Error: "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
