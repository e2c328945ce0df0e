package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Limiter 判断某个 key 在窗口内是否还允许请求
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// KeyFunc 从请求中取限流维度
type KeyFunc func(c *gin.Context) string

// ByClientIP 按客户端 IP 限流
func ByClientIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// ByUserOrIP 已登录按用户限流，否则按 IP
func ByUserOrIP(c *gin.Context) string {
	if id := GetCurrentUserID(c); id != 0 {
		return "user:" + strconv.FormatUint(uint64(id), 10)
	}
	return ByClientIP(c)
}

// RateLimit 通用限流中间件，超过则返回 429
func RateLimit(limiter Limiter, key KeyFunc, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.Request.Context(), key(c)) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code":    http.StatusTooManyRequests,
				"message": message,
			})
			return
		}
		c.Next()
	}
}

// LoginRateLimit 登录/注册接口限流
// 每 IP 每个窗口最多 maxAttempts 次尝试
func LoginRateLimit(maxAttempts int, window time.Duration) gin.HandlerFunc {
	return RateLimit(NewMemoryLimiter(maxAttempts, window), ByClientIP, "登录尝试过于频繁，请稍后再试")
}

// MemoryLimiter 进程内滑动窗口限流
type MemoryLimiter struct {
	maxAttempts int
	window      time.Duration

	mu    sync.Mutex
	store map[string][]time.Time
}

// NewMemoryLimiter 创建进程内限流器，并定期清理过期数据
func NewMemoryLimiter(maxAttempts int, window time.Duration) *MemoryLimiter {
	l := &MemoryLimiter{
		maxAttempts: maxAttempts,
		window:      window,
		store:       make(map[string][]time.Time),
	}
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			l.sweep(time.Now())
		}
	}()
	return l
}

// Allow 实现 Limiter
func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamps := prune(l.store[key], now.Add(-l.window))
	if len(timestamps) >= l.maxAttempts {
		l.store[key] = timestamps
		return false
	}
	l.store[key] = append(timestamps, now)
	return true
}

func (l *MemoryLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := now.Add(-l.window)
	for key, ts := range l.store {
		ts = prune(ts, cutoff)
		if len(ts) == 0 {
			delete(l.store, key)
		} else {
			l.store[key] = ts
		}
	}
}

// prune 移除窗口外的记录
func prune(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

// RedisLimiter 基于 Redis 的固定窗口限流，多实例部署时共享计数
// Redis 不可用时放行，只记录日志
type RedisLimiter struct {
	client      *redis.Client
	prefix      string
	maxAttempts int
	window      time.Duration
}

// NewRedisLimiter 创建 Redis 限流器
func NewRedisLimiter(client *redis.Client, prefix string, maxAttempts int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix, maxAttempts: maxAttempts, window: window}
}

// Allow 实现 Limiter
func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	bucket := time.Now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("限流计数失败，放行请求: %v", err)
		return true
	}
	return incr.Val() <= int64(l.maxAttempts)
}
