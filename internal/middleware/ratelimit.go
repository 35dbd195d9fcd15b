package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/snapgrove/backend/internal/cache"
	"github.com/snapgrove/backend/internal/logger"
	"go.uber.org/zap"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Window duration
	Window time.Duration
	// KeyFunc derives the bucket key from the request (default: client IP)
	KeyFunc func(c *gin.Context) string
}

// DefaultRateLimitConfig returns sensible defaults
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:   100,
		Window:  time.Minute,
		KeyFunc: clientIPKey,
	}
}

// AuthRateLimitConfig returns stricter limits for auth endpoints
func AuthRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:   10,
		Window:  time.Minute,
		KeyFunc: clientIPKey,
	}
}

// UploadRateLimitConfig returns limits for upload endpoints
func UploadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Limit:   20,
		Window:  time.Minute,
		KeyFunc: clientIPKey,
	}
}

func clientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

// TokenBucket for rate limiting
type TokenBucket struct {
	mu         sync.Mutex
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(maxTokens float64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow checks if a request is allowed based on token availability
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(tb.lastRefill).Seconds()
	tb.tokens = min(tb.maxTokens, tb.tokens+elapsed*tb.refillRate)
	tb.lastRefill = now

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// RetryAfter returns seconds to wait before the next request can succeed
func (tb *TokenBucket) RetryAfter() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tb.tokens < 1 {
		timeToToken := (1 - tb.tokens) / tb.refillRate
		return int(timeToToken) + 1
	}
	return 0
}

// RateLimiter keeps a token bucket per key
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*rateLimitBucket
	config  RateLimitConfig
}

type rateLimitBucket struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewRateLimiter creates a new rate limiting middleware
func NewRateLimiter(config RateLimitConfig) gin.HandlerFunc {
	if config.KeyFunc == nil {
		config.KeyFunc = clientIPKey
	}

	rl := &RateLimiter{
		buckets: make(map[string]*rateLimitBucket),
		config:  config,
	}
	go rl.cleanupLoop(time.Minute)

	return func(c *gin.Context) {
		key := config.KeyFunc(c)
		if !rl.allowAny(key) {
			RecordRateLimitExceeded(c.Request.URL.Path, c.Request.Method)
			c.Header("Retry-After", strconv.Itoa(rl.retryAfter(key)))
			c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
			c.Header("X-RateLimit-Remaining", "0")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": rl.retryAfter(key),
			})
			return
		}
		c.Next()
	}
}

// allowAny prefers the shared redis window so limits hold across
// replicas, falling back to the local token bucket when redis is
// down or not configured
func (rl *RateLimiter) allowAny(key string) bool {
	if redis := cache.GetRedisClient(); redis != nil {
		allowed, err := rl.allowRedis(redis, key)
		if err == nil {
			return allowed
		}
		logger.Log.Debug("redis rate limit check failed, using local bucket",
			zap.Error(err))
	}
	return rl.allow(key)
}

// allowRedis implements a fixed window counter keyed by bucket key
func (rl *RateLimiter) allowRedis(redis *cache.RedisClient, key string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 250*time.Millisecond)
	defer cancel()

	window := time.Now().Unix() / int64(rl.config.Window.Seconds())
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, window)

	count, err := redis.Incr(ctx, redisKey)
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := redis.Expire(ctx, redisKey, rl.config.Window); err != nil {
			return false, err
		}
	}
	return count <= int64(rl.config.Limit), nil
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	entry, exists := rl.buckets[key]
	if !exists {
		refillRate := float64(rl.config.Limit) / rl.config.Window.Seconds()
		entry = &rateLimitBucket{bucket: NewTokenBucket(float64(rl.config.Limit), refillRate)}
		rl.buckets[key] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.bucket.Allow()
}

func (rl *RateLimiter) retryAfter(key string) int {
	rl.mu.Lock()
	entry, exists := rl.buckets[key]
	rl.mu.Unlock()

	if !exists {
		return 1
	}
	return entry.bucket.RetryAfter()
}

// cleanupLoop drops buckets idle for more than two windows
func (rl *RateLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-2 * rl.config.Window)
		rl.mu.Lock()
		for key, entry := range rl.buckets {
			if entry.lastSeen.Before(cutoff) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimit returns a middleware with default configuration
func RateLimit() gin.HandlerFunc {
	return NewRateLimiter(DefaultRateLimitConfig())
}

// RateLimitAuth returns a middleware for auth endpoints
func RateLimitAuth() gin.HandlerFunc {
	return NewRateLimiter(AuthRateLimitConfig())
}

// RateLimitUpload returns a middleware for upload endpoints
func RateLimitUpload() gin.HandlerFunc {
	return NewRateLimiter(UploadRateLimitConfig())
}
