package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// counter increments a window key and makes sure it carries a TTL, as one
// atomic step.
type counter interface {
	Hit(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// hitScript runs INCR and sets the expiry whenever the key has none, so a
// key can never be left without a TTL.
var hitScript = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if redis.call('PTTL', KEYS[1]) < 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

type redisCounter struct {
	rdb redis.Scripter
}

func (c redisCounter) Hit(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	return hitScript.Run(ctx, c.rdb, []string{key}, ttl.Milliseconds()).Int64()
}

// RedisRateLimit allows at most limit requests per client IP in each window,
// counted in Redis so every replica shares the budget. When Redis is
// unreachable the request is let through.
func RedisRateLimit(rdb redis.Scripter, prefix string, limit int64, window time.Duration) func(http.Handler) http.Handler {
	return fixedWindow(redisCounter{rdb: rdb}, prefix, limit, window)
}

func fixedWindow(c counter, prefix string, limit int64, window time.Duration) func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 250*time.Millisecond)
			defer cancel()

			key := "rl:" + prefix + ":" + clientIP(r)
			n, err := c.Hit(ctx, key, window)
			if err != nil {
				slog.WarnContext(r.Context(), "rate limit store unavailable", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			if n > limit {
				w.Header().Set("Retry-After", retryAfter)
				writeJSONError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
