package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jabbarSoomro/project-management/internal/pkg/metrics"
	"github.com/jabbarSoomro/project-management/internal/pkg/ratelimit"
)

// RateLimit 按客户端 IP 限流，用于认证相关接口。
//
// Redis 不可用时放行请求，只记日志。
func RateLimit(limiter *ratelimit.RateLimiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			if logger != nil {
				logger.Warn("rate limit check failed",
					slog.String("client_ip", c.ClientIP()),
					slog.String("error", err.Error()))
			}
			c.Next()
			return
		}

		if !allowed {
			metrics.RateLimitRejectedTotal.Inc()
			c.JSON(http.StatusTooManyRequests, gin.H{"message": "Too Many Attempts."})
			c.Abort()
			return
		}

		c.Next()
	}
}
