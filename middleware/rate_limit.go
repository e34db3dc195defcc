package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/cppla/artcopy/utils"
)

const limiterIdleTTL = 5 * time.Minute

type rateLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimiter hands out one token bucket per client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rateLimiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute requests per IP with a burst of half that.
func NewRateLimiter(perMinute int) *RateLimiter {
	return &RateLimiter{
		limiters: map[string]*rateLimiter{},
		limit:    rate.Every(time.Minute / time.Duration(max(perMinute, 1))),
		burst:    max(perMinute/2, 1),
	}
}

// Middleware rejects requests over the limit. HTML form posts are sent back
// to the form with a flash; API calls get a JSON error.
func (rl *RateLimiter) Middleware(flasher *utils.Flasher) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if rl.Allow(GetClientMeta(ctx).IPAddress) {
			ctx.Next()
			return
		}
		if flasher != nil && ctx.ContentType() != gin.MIMEJSON {
			_ = flasher.Add(ctx, utils.FlashError, "Too many requests. Please wait a moment and try again.")
			ctx.Redirect(http.StatusFound, "/")
			ctx.Abort()
			return
		}
		utils.APIError(ctx, http.StatusTooManyRequests, "rate limit exceeded")
	}
}

// Allow consumes one token for key.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for k, l := range rl.limiters {
		if now.After(l.expires) {
			delete(rl.limiters, k)
		}
	}

	l, ok := rl.limiters[key]
	if !ok {
		l = &rateLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limiters[key] = l
	}
	l.expires = now.Add(limiterIdleTTL)
	return l.limiter.Allow()
}
