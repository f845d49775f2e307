package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/paulmach/orb"
	"github.com/redis/go-redis/v9"

	"Yatra-App/internal/domain/model"
	"Yatra-App/internal/domain/repository"
	"Yatra-App/internal/logger"
	"Yatra-App/internal/metrics"
)

const poiCacheKeyPrefix = "yatra:pois"

// RedisPOIsCache POIsRepositoryの前段に置くRedisキャッシュ
// Redisのエラーはログに出して元のリポジトリの結果を返す
type RedisPOIsCache struct {
	next repository.POIsRepository
	rdb  redis.Cmdable
	ttl  time.Duration
}

func NewRedisPOIsCache(next repository.POIsRepository, rdb redis.Cmdable, ttl time.Duration) repository.POIsRepository {
	return &RedisPOIsCache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
	}
}

func (c *RedisPOIsCache) GetByID(ctx context.Context, id string) (*model.POI, error) {
	key := fmt.Sprintf("%s:id:%s", poiCacheKeyPrefix, id)

	var cached model.POI
	if c.load(ctx, key, &cached) {
		return &cached, nil
	}

	poi, err := c.next.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, poi)
	return poi, nil
}

func (c *RedisPOIsCache) FindAll(ctx context.Context) ([]*model.POI, error) {
	key := poiCacheKeyPrefix + ":all"
	return c.list(ctx, key, func() ([]*model.POI, error) {
		return c.next.FindAll(ctx)
	})
}

func (c *RedisPOIsCache) FindByCategories(ctx context.Context, categories []string) ([]*model.POI, error) {
	key := fmt.Sprintf("%s:categories:%s", poiCacheKeyPrefix, categoriesKey(categories))
	return c.list(ctx, key, func() ([]*model.POI, error) {
		return c.next.FindByCategories(ctx, categories)
	})
}

func (c *RedisPOIsCache) FindWithinBound(ctx context.Context, bound orb.Bound, categories []string) ([]*model.POI, error) {
	key := fmt.Sprintf("%s:bound:%.5f,%.5f,%.5f,%.5f:%s", poiCacheKeyPrefix,
		bound.Min.Lon(), bound.Min.Lat(), bound.Max.Lon(), bound.Max.Lat(), categoriesKey(categories))
	return c.list(ctx, key, func() ([]*model.POI, error) {
		return c.next.FindWithinBound(ctx, bound, categories)
	})
}

func (c *RedisPOIsCache) list(ctx context.Context, key string, fetch func() ([]*model.POI, error)) ([]*model.POI, error) {
	var cached []*model.POI
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	pois, err := fetch()
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, pois)
	return pois, nil
}

// load キャッシュから読み込む。ヒットした場合のみtrue
func (c *RedisPOIsCache) load(ctx context.Context, key string, dst any) bool {
	s, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.L().Warnf("⚠️ Redisキャッシュ読み込み失敗 (%s): %v", key, err)
		}
		metrics.POICacheMissesTotal.Inc()
		return false
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		logger.L().Warnf("⚠️ キャッシュデータのパース失敗 (%s): %v", key, err)
		metrics.POICacheMissesTotal.Inc()
		return false
	}
	metrics.POICacheHitsTotal.Inc()
	return true
}

func (c *RedisPOIsCache) store(ctx context.Context, key string, value any) {
	b, err := json.Marshal(value)
	if err != nil {
		logger.L().Warnf("⚠️ キャッシュデータのシリアライズ失敗 (%s): %v", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		logger.L().Warnf("⚠️ Redisキャッシュ書き込み失敗 (%s): %v", key, err)
	}
}

// categoriesKey カテゴリの順序に依存しないキャッシュキーを作る
func categoriesKey(categories []string) string {
	if len(categories) == 0 {
		return "*"
	}
	sorted := append([]string(nil), categories...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}
