package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"rentfunnel/internal/pkg/response"
	"rentfunnel/internal/storage"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ClientLimiter hands out one token bucket per client key
type ClientLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*clientLimiter
	lastPrune time.Time
	now       func() time.Time
}

// NewClientLimiter allows perMinute events per key with the given burst
func NewClientLimiter(perMinute, burst int) *ClientLimiter {
	return &ClientLimiter{
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
		clients: make(map[string]*clientLimiter),
		now:     time.Now,
	}
}

// Reserve takes a token for key. It returns 0 when the event may proceed,
// otherwise how long the client has to wait.
func (l *ClientLimiter) Reserve(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > limiterIdleTTL {
		for k, c := range l.clients {
			if now.Sub(c.lastSeen) > limiterIdleTTL {
				delete(l.clients, k)
			}
		}
		l.lastPrune = now
	}

	c, ok := l.clients[key]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return limiterIdleTTL
	}
	delay := r.DelayFrom(now)
	if delay > 0 {
		r.CancelAt(now)
	}
	return delay
}

// RateLimit rejects clients that exceed perMinute requests with 429
// RATE_LIMITED. perMinute <= 0 disables the limit.
func RateLimit(perMinute, burst int) gin.HandlerFunc {
	if perMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	return RateLimitWith(NewClientLimiter(perMinute, burst))
}

func RateLimitWith(l *ClientLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		wait := l.Reserve(c.ClientIP())
		if wait <= 0 {
			c.Next()
			return
		}

		secs := int(math.Ceil(wait.Seconds()))
		zap.L().Warn("rate_limited",
			zap.String("client_ip", c.ClientIP()),
			zap.String("path", c.FullPath()),
			zap.Int("retry_after", secs),
		)
		c.Header("Retry-After", strconv.Itoa(secs))
		response.StorageError(c, storage.RateLimited(secs))
		c.Abort()
	}
}
