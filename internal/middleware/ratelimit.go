package middleware

import (
	"fmt"
	"net"
	"net/http"
	"time"

	apperrors "github.com/Thobbytosin/flowva-server/pkg/errors"
	"github.com/Thobbytosin/flowva-server/pkg/logger"
	"github.com/Thobbytosin/flowva-server/pkg/redis"
)

// Rate limit defaults: 100 requests per 15-minute window per client IP.
const (
	RateLimitRequests = 100
	RateLimitWindow   = 15 * time.Minute
)

// RateLimit enforces a fixed-window per-IP request limit backed by Redis.
// With no Redis client configured the limiter is a no-op; a Redis outage
// also fails open so the API stays up.
func RateLimit(client *redis.Client, limit int64, window time.Duration, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if client == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := "ratelimit:" + clientIP(r)

			count, err := client.Incr(ctx, key)
			if err != nil {
				logger.WithError(err).Warn("Rate limiter unavailable, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				if err := client.Expire(ctx, key, window); err != nil {
					logger.WithError(err).Warn("Failed to set rate limit window")
				}
			}

			if count > limit {
				writeErrorResponse(w, apperrors.NewRateLimitError("Too many requests, please try again later"), logger)
				return
			}

			w.Header().Set("RateLimit-Limit", fmt.Sprintf("%d", limit))
			w.Header().Set("RateLimit-Remaining", fmt.Sprintf("%d", max64(limit-count, 0)))

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP trusts RemoteAddr, which chi's RealIP middleware rewrites from
// the forwarding headers earlier in the chain.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
