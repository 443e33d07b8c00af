package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Markishime/smart-ecolock-sub003/config"
)

// Client Redis 客户端封装
// 当前用于信号事件去重（传感器通道为 at-least-once 投递，重复很常见）
// 去重只是快速短路：即使 Redis 不可用，字段级补丁本身也是幂等的
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 信号事件去重 ──

const dedupPrefix = "signal:seen:"

// MarkSeen 标记信号事件键，返回 true 表示首次出现
// 键形如 rfid:<student>:<section>:<date>:<unix> 由调用方拼装
func (c *Client) MarkSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, dedupPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ── 速率限制 ──

const rateLimitPrefix = "rate:"

// CheckRateLimit 固定窗口计数，返回 true 表示放行
// 设备信号端点无认证，靠它挡住失控的传感器刷写
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := rateLimitPrefix + key
	n, err := c.rdb.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
