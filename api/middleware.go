package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/Domenick1991/airreservations/internal/auth"
	"github.com/Domenick1991/airreservations/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxSubject      = "subject"
)

// RequestID propagates the caller's request id or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

func Logger(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"route", routeLabel(c),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"request_id", requestID(c),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warnw("request", fields...)
			return
		}
		logger.Infow("request", fields...)
	}
}

func Metrics(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := routeLabel(c)
		start := time.Now()
		reg.InFlight(route, 1)
		defer reg.InFlight(route, -1)

		c.Next()
		reg.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), time.Since(start))
	}
}

// routeLabel uses the matched route pattern so metric labels stay bounded.
func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}

// RateLimiter keeps one token bucket per client IP. Idle buckets expire.
type RateLimiter struct {
	limiters *cache.Cache
	rps      rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: cache.New(10*time.Minute, 20*time.Minute),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
	}
}

func (l *RateLimiter) limiter(ip string) *rate.Limiter {
	if v, found := l.limiters.Get(ip); found {
		return v.(*rate.Limiter)
	}
	limiter := rate.NewLimiter(l.rps, l.burst)
	if err := l.limiters.Add(ip, limiter, cache.DefaultExpiration); err != nil {
		// another request created it first
		if v, found := l.limiters.Get(ip); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

func (l *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiter(c.ClientIP()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		c.Next()
	}
}

// RequireAdmin accepts only bearer tokens carrying the admin role. Without a
// configured secret every admin request is refused.
func RequireAdmin(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tokens.Enabled() {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{Error: "admin api is disabled"})
			return
		}

		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.Header("WWW-Authenticate", `Bearer realm="airreservations"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		claims, err := tokens.RequireRole(token, auth.RoleAdmin)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "invalid token"})
			return
		}
		c.Set(ctxSubject, claims.Subject)
		c.Next()
	}
}
