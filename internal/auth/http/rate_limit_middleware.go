package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apperrors "github.com/allisson/credstore/internal/errors"
	"github.com/allisson/credstore/internal/httputil"
)

const (
	limiterSweepInterval = 5 * time.Minute
	limiterIdleTimeout   = time.Hour
)

type actorLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// actorLimiters hands out one token bucket per actor.
type actorLimiters struct {
	mu       sync.Mutex
	limiters map[string]*actorLimiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

func newActorLimiters(rps float64, burst int) *actorLimiters {
	return &actorLimiters{
		limiters: make(map[string]*actorLimiter),
		limit:    rate.Limit(rps),
		burst:    burst,
		now:      time.Now,
	}
}

// reserve takes a token for actor. It returns zero when the request may proceed and
// otherwise how long the actor has to wait; no token is consumed in that case.
func (a *actorLimiters) reserve(actor string) time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	entry, ok := a.limiters[actor]
	if !ok {
		entry = &actorLimiter{limiter: rate.NewLimiter(a.limit, a.burst)}
		a.limiters[actor] = entry
	}
	entry.lastSeen = now

	reservation := entry.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return limiterIdleTimeout
	}
	delay := reservation.DelayFrom(now)
	if delay > 0 {
		reservation.CancelAt(now)
	}
	return delay
}

// sweep drops limiters of actors idle since before cutoff.
func (a *actorLimiters) sweep(cutoff time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for actor, entry := range a.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(a.limiters, actor)
		}
	}
}

func (a *actorLimiters) sweepUntilDone(ctx context.Context) {
	ticker := time.NewTicker(limiterSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.sweep(a.now().Add(-limiterIdleTimeout))
		}
	}
}

// RateLimitMiddleware throttles each authenticated actor to rps requests per second with
// the given burst and answers 429 with Retry-After once the bucket is empty. It must run
// after AuthenticationMiddleware. Idle actors are forgotten until ctx is done.
func RateLimitMiddleware(ctx context.Context, rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	limiters := newActorLimiters(rps, burst)
	go limiters.sweepUntilDone(ctx)

	return func(c *gin.Context) {
		actor, ok := GetActor(c.Request.Context())
		if !ok {
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if delay := limiters.reserve(actor); delay > 0 {
			retryAfter := int(math.Ceil(delay.Seconds()))
			logger.Debug("rate limit exceeded",
				slog.String("actor", actor),
				slog.Int("retry_after", retryAfter),
			)
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, httputil.ErrorResponse{
				Error:   "rate_limit_exceeded",
				Message: "Too many requests. Please retry after the specified delay.",
			})
			return
		}

		c.Next()
	}
}
