package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/healthconnect/portal/internal/pkg/response"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Minute

// counter is the subset of go-redis the limiter needs.
type counter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RateLimit caps each authenticated user at limit requests per minute for the
// routes it guards, using a fixed window counter in Redis. A nil counter or a
// non-positive limit disables it; Redis errors let the request through.
func RateLimit(rdb counter, scope string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}
		subject := CurrentUserID(c)
		if subject == "" {
			subject = c.ClientIP()
		}

		ctx := c.Request.Context()
		window := time.Now().Truncate(rateLimitWindow).Unix()
		key := fmt.Sprintf("hc:rate_limit:%s:%s:%d", scope, subject, window)

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, rateLimitWindow+time.Second)
		}
		if count > int64(limit) {
			c.Header("Retry-After", strconv.Itoa(int(rateLimitWindow.Seconds())))
			response.TooManyRequests(c, "too many summary requests, please wait a moment")
			return
		}
		c.Next()
	}
}
