package api

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// sweepInterval is the minimum time between two evictions of idle clients
const sweepInterval = time.Minute

// RateLimiter keeps one token bucket per client key. Buckets that have
// refilled completely are evicted, since a fresh bucket behaves the same.
type RateLimiter struct {
	mu        sync.Mutex
	limits    map[string]*rate.Limiter
	rate      rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter allows perHour requests per client, refilled evenly over the hour.
// A non-positive perHour disables limiting.
func NewRateLimiter(perHour int) *RateLimiter {
	limit := rate.Inf
	burst := 0
	if perHour > 0 {
		limit = rate.Every(time.Hour / time.Duration(perHour))
		burst = perHour
	}
	return &RateLimiter{
		limits:    make(map[string]*rate.Limiter),
		rate:      limit,
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether a request from key may proceed
func (rl *RateLimiter) Allow(key string) bool {
	if rl.rate == rate.Inf {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= sweepInterval {
		rl.sweep(now)
	}

	limiter, ok := rl.limits[key]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limits[key] = limiter
	}
	return limiter.AllowN(now, 1)
}

// sweep drops the buckets that are full again. Callers hold mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for key, limiter := range rl.limits {
		if limiter.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limits, key)
		}
	}
	rl.lastSweep = now
}

func (rl *RateLimiter) clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}

// Middleware rejects clients over their budget with 429
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow(clientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr; RealIP may already have done so
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// requestLogger logs one line per request with zap
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			defer func() {
				logger.Info("HTTP request",
					zap.String("request_id", middleware.GetReqID(r.Context())),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("remote", clientIP(r)),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)))
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
