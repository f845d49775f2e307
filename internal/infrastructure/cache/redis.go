package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"Yatra-App/internal/logger"
)

// NewRedisClient Redisクライアントを作成して疎通確認する
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("REDIS_ADDRが設定されていません")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("Redisへの接続に失敗: %w", err)
	}

	logger.L().Infof("✅ Redis connected: %s (db=%d)", addr, db)
	return client, nil
}
