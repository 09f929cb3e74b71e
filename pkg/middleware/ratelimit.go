package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/wyfcoding/optionstrategy/pkg/logger"
	"github.com/wyfcoding/optionstrategy/pkg/ratelimit"
)

// RateLimitMiddleware creates a Gin middleware limiting requests per client IP
func RateLimitMiddleware(limiter ratelimit.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), "http:"+c.ClientIP())
		if err != nil {
			// Fail open if rate limiter fails
			logger.Warn(c.Request.Context(), "rate limiter failed", "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))

		if !res.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(res.RetryAfter.Seconds()))))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too Many Requests",
				"retry_after": res.RetryAfter.String(),
			})
			return
		}

		c.Next()
	}
}

// GRPCRateLimitInterceptor gRPC 限流拦截器，按对端地址限流
func GRPCRateLimitInterceptor(limiter ratelimit.RateLimiter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		key := "grpc:unknown"
		if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
			key = "grpc:" + p.Addr.String()
		}
		res, err := limiter.Allow(ctx, key)
		if err == nil && !res.Allowed {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}
