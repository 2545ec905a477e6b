package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Anwarisbased/laravelCR-sub000/domain"
	"github.com/Anwarisbased/laravelCR-sub000/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Definition rows (ranks, achievements, products) change rarely and are read
// on every scan, so they sit behind a cache-aside layer. A cache failure is
// never an error to the caller: the source repository is always authoritative.

const (
	keyRanksAll            = "defs:ranks:all"
	keyRankByKey           = "defs:ranks:key:%s"
	keyAchievementsByEvent = "defs:achievements:event:%s"
	keyAchievementByKey    = "defs:achievements:key:%s"
	keyProductBySKU        = "defs:products:sku:%s"
)

// RankSource contract interface, the postgres repository underneath.
type RankSource interface {
	FindAll(ctx context.Context) ([]domain.Rank, error)
	FindByKey(ctx context.Context, key string) (domain.Rank, error)
}

type RankCache struct {
	client *redis.Client
	source RankSource
	ttl    time.Duration
}

func NewRankCache(client *redis.Client, source RankSource, ttl time.Duration) *RankCache {
	return &RankCache{
		client: client,
		source: source,
		ttl:    ttl,
	}
}

func (c *RankCache) FindAll(ctx context.Context) ([]domain.Rank, error) {
	var ranks []domain.Rank
	if hit := cacheGet(ctx, c.client, keyRanksAll, &ranks); hit {
		return ranks, nil
	}

	ranks, err := c.source.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, c.client, keyRanksAll, ranks, c.ttl)
	return ranks, nil
}

func (c *RankCache) FindByKey(ctx context.Context, key string) (domain.Rank, error) {
	cacheKey := fmt.Sprintf(keyRankByKey, key)

	var rank domain.Rank
	if hit := cacheGet(ctx, c.client, cacheKey, &rank); hit {
		return rank, nil
	}

	rank, err := c.source.FindByKey(ctx, key)
	if err != nil {
		return domain.Rank{}, err
	}

	cacheSet(ctx, c.client, cacheKey, rank, c.ttl)
	return rank, nil
}

// Invalidate drops every cached rank entry. Called after an admin upsert.
func (c *RankCache) Invalidate(ctx context.Context) error {
	return deleteByPattern(ctx, c.client, "defs:ranks:*")
}

// AchievementSource contract interface, the postgres repository underneath.
type AchievementSource interface {
	FindActiveByTriggerEvent(ctx context.Context, triggerEvent string) ([]domain.Achievement, error)
	FindByKey(ctx context.Context, key string) (domain.Achievement, error)
}

type AchievementCache struct {
	client *redis.Client
	source AchievementSource
	ttl    time.Duration
}

func NewAchievementCache(client *redis.Client, source AchievementSource, ttl time.Duration) *AchievementCache {
	return &AchievementCache{
		client: client,
		source: source,
		ttl:    ttl,
	}
}

func (c *AchievementCache) FindActiveByTriggerEvent(ctx context.Context, triggerEvent string) ([]domain.Achievement, error) {
	cacheKey := fmt.Sprintf(keyAchievementsByEvent, triggerEvent)

	var achievements []domain.Achievement
	if hit := cacheGet(ctx, c.client, cacheKey, &achievements); hit {
		return achievements, nil
	}

	achievements, err := c.source.FindActiveByTriggerEvent(ctx, triggerEvent)
	if err != nil {
		return nil, err
	}

	cacheSet(ctx, c.client, cacheKey, achievements, c.ttl)
	return achievements, nil
}

func (c *AchievementCache) FindByKey(ctx context.Context, key string) (domain.Achievement, error) {
	cacheKey := fmt.Sprintf(keyAchievementByKey, key)

	var achievement domain.Achievement
	if hit := cacheGet(ctx, c.client, cacheKey, &achievement); hit {
		return achievement, nil
	}

	achievement, err := c.source.FindByKey(ctx, key)
	if err != nil {
		return domain.Achievement{}, err
	}

	cacheSet(ctx, c.client, cacheKey, achievement, c.ttl)
	return achievement, nil
}

func (c *AchievementCache) Invalidate(ctx context.Context) error {
	return deleteByPattern(ctx, c.client, "defs:achievements:*")
}

// ProductSource contract interface, the postgres repository underneath.
type ProductSource interface {
	FindBySKU(ctx context.Context, sku string) (domain.Product, error)
	FindByID(ctx context.Context, id uint) (domain.Product, error)
}

type ProductCache struct {
	client *redis.Client
	source ProductSource
	ttl    time.Duration
}

func NewProductCache(client *redis.Client, source ProductSource, ttl time.Duration) *ProductCache {
	return &ProductCache{
		client: client,
		source: source,
		ttl:    ttl,
	}
}

func (c *ProductCache) FindBySKU(ctx context.Context, sku string) (domain.Product, error) {
	cacheKey := fmt.Sprintf(keyProductBySKU, sku)

	var product domain.Product
	if hit := cacheGet(ctx, c.client, cacheKey, &product); hit {
		return product, nil
	}

	product, err := c.source.FindBySKU(ctx, sku)
	if err != nil {
		return domain.Product{}, err
	}

	cacheSet(ctx, c.client, cacheKey, product, c.ttl)
	return product, nil
}

// FindByID is a pass-through, product lookups by ID happen on the redemption
// path where a stale points cost would be visible to the user.
func (c *ProductCache) FindByID(ctx context.Context, id uint) (domain.Product, error) {
	return c.source.FindByID(ctx, id)
}

func (c *ProductCache) Invalidate(ctx context.Context) error {
	return deleteByPattern(ctx, c.client, "defs:products:*")
}

func cacheGet(ctx context.Context, client *redis.Client, key string, out any) bool {
	val, err := client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("definition cache read failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal([]byte(val), out); err != nil {
		logger.Warn("definition cache entry corrupt, dropping", "key", key, "error", err)
		client.Del(ctx, key)
		return false
	}

	return true
}

func cacheSet(ctx context.Context, client *redis.Client, key string, value any, ttl time.Duration) {
	jsonData, err := json.Marshal(value)
	if err != nil {
		logger.Warn("definition cache marshal failed", "key", key, "error", err)
		return
	}

	if err := client.Set(ctx, key, jsonData, ttl).Err(); err != nil {
		logger.Warn("definition cache write failed", "key", key, "error", err)
	}
}

func deleteByPattern(ctx context.Context, client *redis.Client, pattern string) error {
	iter := client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to invalidate %q: %w", iter.Val(), err)
		}
	}

	return iter.Err()
}
