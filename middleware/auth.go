package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bookline/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key carrying the authenticated user ID.
const UserIDKey = "userID"

// JWTAuthMiddleware authenticates the bearer token and stores the acting user
// ID in the request context. Identity itself lives in the external directory;
// here the token only has to be valid and carry a subject.
//
// The token hash is cached in Redis so repeat calls skip signature
// verification; a cache outage degrades to verifying every request.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		computedHash := utils.HashToken(tokenString)
		authCache := utils.GetAuthCacheClient()

		if authCache != nil {
			cacheKey := utils.AuthCachePrefix + computedHash
			userID, err := authCache.Get(ctx, cacheKey).Result()
			if err == nil && userID != "" {
				_ = authCache.Expire(ctx, cacheKey, time.Hour).Err()
				c.Set(UserIDKey, userID)
				c.Next()
				return
			}
			if err != nil && err != redis.Nil {
				utils.GetLogger().Warn("auth cache unavailable, verifying token directly", zap.Error(err))
			}
		}

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		if authCache != nil {
			_ = authCache.Set(ctx, utils.AuthCachePrefix+computedHash, userID, time.Hour).Err()
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// ActorID returns the authenticated user ID from the gin context.
func ActorID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
