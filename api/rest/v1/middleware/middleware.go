package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ProjectIDValidator rejects malformed project ids before they reach the
// registry. Unknown-looking ids read as 404, matching the lookup contract.
func ProjectIDValidator() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID := c.Param("id")
		if _, err := uuid.Parse(projectID); err != nil {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error": "Project not found",
			})
			return
		}
		c.Next()
	}
}

const (
	// limiterIdleTTL is how long a client may stay silent before its bucket
	// is eligible for eviction.
	limiterIdleTTL = 3 * time.Minute
	// limiterSweepAbove triggers a sweep of idle entries when the table
	// grows past it, keeping the map bounded by recently active clients.
	limiterSweepAbove = 1024
)

type clientLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimit applies a per-client token bucket and answers 429 when a
// client's bucket is drained.
func RateLimit(perSecond float64, burst int) gin.HandlerFunc {
	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	return func(c *gin.Context) {
		now := time.Now()
		ip := c.ClientIP()

		mu.Lock()
		cl, ok := clients[ip]
		if !ok {
			if len(clients) >= limiterSweepAbove {
				sweepIdle(clients, now, limiterIdleTTL)
			}
			cl = &clientLimiter{lim: rate.NewLimiter(rate.Limit(perSecond), burst)}
			clients[ip] = cl
		}
		cl.lastSeen = now
		allowed := cl.lim.Allow()
		mu.Unlock()

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}
		c.Next()
	}
}

// sweepIdle drops limiter entries not seen within ttl. Callers hold the
// table's lock.
func sweepIdle(clients map[string]*clientLimiter, now time.Time, ttl time.Duration) {
	for addr, cl := range clients {
		if now.Sub(cl.lastSeen) > ttl {
			delete(clients, addr)
		}
	}
}
