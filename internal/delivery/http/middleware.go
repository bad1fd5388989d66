package http

import (
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pricelens/backend/config"
	"github.com/pricelens/backend/internal/infrastructure/metrics"
	"golang.org/x/time/rate"
)

// CORSMiddleware handles CORS for browser clients
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if isAllowedOrigin(origin, allowedOrigins) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			if !allowsAnyOrigin(origin, allowedOrigins) {
				c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			}
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, DELETE")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Max-Age", "3600")
		}

		// Handle preflight requests
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// isAllowedOrigin checks if the origin is in the allowed list.
// An entry ending in "*" matches by prefix.
func isAllowedOrigin(origin string, allowedOrigins []string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range allowedOrigins {
		if strings.HasSuffix(allowed, "*") {
			if strings.HasPrefix(origin, strings.TrimSuffix(allowed, "*")) {
				return true
			}
		} else if origin == allowed {
			return true
		}
	}
	return false
}

// allowsAnyOrigin reports whether origin is only admitted by a bare "*"
// entry. Such origins never get credentialed responses.
func allowsAnyOrigin(origin string, allowedOrigins []string) bool {
	for _, allowed := range allowedOrigins {
		if allowed != "*" && isAllowedOrigin(origin, []string{allowed}) {
			return false
		}
	}
	return true
}

// LoggerMiddleware logs requests
func LoggerMiddleware() gin.HandlerFunc {
	return gin.Logger()
}

// RecoveryMiddleware recovers from panics
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.Recovery()
}

// clientLimiters hands out one token bucket per client IP.
// The table is bounded; the least recently seen client is evicted first.
type clientLimiters struct {
	mu       sync.Mutex
	limiters *lru.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

func newClientLimiters(perMinute, burst, maxClients int) *clientLimiters {
	if maxClients <= 0 {
		maxClients = 10000
	}
	if burst <= 0 {
		burst = 1
	}
	cache, err := lru.New[string, *rate.Limiter](maxClients)
	if err != nil {
		// only fails for a non-positive size
		log.Fatalf("[RATELIMIT] failed to create limiter table: %v", err)
	}
	return &clientLimiters{
		limiters: cache,
		limit:    rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		burst:    burst,
	}
}

func (l *clientLimiters) get(client string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, ok := l.limiters.Get(client); ok {
		return limiter
	}
	limiter := rate.NewLimiter(l.limit, l.burst)
	l.limiters.Add(client, limiter)
	return limiter
}

// RateLimitMiddleware rejects clients that exceed cfg.PerIP requests per
// minute with 429 Too Many Requests
func RateLimitMiddleware(cfg config.RateLimitConfig, m *metrics.Metrics) gin.HandlerFunc {
	limiters := newClientLimiters(cfg.PerIP, cfg.Burst, cfg.MaxClients)

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			m.IncRateLimited()
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error:      "too many requests",
				Kind:       "rate_limited",
				Suggestion: "Wait a moment and try again.",
			})
			return
		}
		c.Next()
	}
}
