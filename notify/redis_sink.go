package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink 通过 Redis PUBLISH 广播通知
type RedisSink struct {
	client  *redis.Client
	channel string
}

// NewRedisClient 创建 Redis 客户端
func NewRedisClient(host, port, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       db,
	})
}

// NewRedisSink 创建 Redis 通道
func NewRedisSink(client *redis.Client, channel string) *RedisSink {
	return &RedisSink{client: client, channel: channel}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Send(ctx context.Context, e Event) error {
	payload, err := e.ToJSON()
	if err != nil {
		return fmt.Errorf("序列化通知失败: %w", err)
	}
	if err := s.client.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("发布到 redis 失败: %w", err)
	}
	return nil
}

// Close 关闭客户端
func (s *RedisSink) Close() error {
	return s.client.Close()
}
