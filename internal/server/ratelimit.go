package server

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fitslot/internal/api"
	"fitslot/internal/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter keeps one token bucket per client IP. Idle clients are evicted after ttl.
type clientLimiter struct {
	mu      sync.Mutex
	clients map[string]*client
	rate    rate.Limit
	burst   int
	ttl     time.Duration
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(rps float64, burst int, ttl time.Duration) *clientLimiter {
	l := &clientLimiter{
		clients: make(map[string]*client),
		rate:    rate.Limit(rps),
		burst:   burst,
		ttl:     ttl,
	}
	go l.evictIdle()
	return l
}

func (l *clientLimiter) evictIdle() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		for key, c := range l.clients {
			if time.Since(c.lastSeen) > l.ttl {
				delete(l.clients, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *clientLimiter) allow(key string) bool {
	l.mu.Lock()
	c, ok := l.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[key] = c
	}
	c.lastSeen = time.Now()
	l.mu.Unlock()

	return c.limiter.Allow()
}

// retryAfter is the whole number of seconds until one token refills.
func (l *clientLimiter) retryAfter() int {
	if l.rate <= 0 {
		return 1
	}
	return int(math.Max(1, math.Ceil(1/float64(l.rate))))
}

// RateLimitMiddleware throttles each client IP to rps requests per second with the given burst.
// Slot polling is the main traffic source, so the limit applies to every route.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiter := newClientLimiter(rps, burst, 3*time.Minute)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if limiter.allow(ip) {
			c.Next()
			return
		}

		logger.Warn("rate limit exceeded", "client_ip", ip, "path", c.Request.URL.Path)
		c.Header("Retry-After", strconv.Itoa(limiter.retryAfter()))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{
			Error:  "rate limit exceeded",
			Reason: "rate_limited",
		})
	}
}
