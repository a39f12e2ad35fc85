package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/config"
	"github.com/haalarikone/haku-api/internal/models"
	"github.com/haalarikone/haku-api/internal/observability"
)

// RedisCache backs the two pieces of shared state in the pipeline: the
// query-interpretation cache and the rate limiter's sliding-window counters.
type RedisCache struct {
	client            redis.UniversalClient
	interpretationTTL time.Duration
	logger            *zap.Logger
}

func NewRedisCache(cfg config.RedisConfig, interpretationTTL time.Duration, logger *zap.Logger) (*RedisCache, error) {
	var client redis.UniversalClient

	if len(cfg.Addresses) > 1 {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs:        cfg.Addresses,
			Password:     cfg.Password,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Addresses[0],
			Password:     cfg.Password,
			DB:           cfg.DB,
			PoolSize:     cfg.PoolSize,
			MinIdleConns: cfg.MinIdleConns,
			DialTimeout:  cfg.DialTimeout,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	logger.Info("redis cache connected", zap.Strings("addresses", cfg.Addresses))

	return &RedisCache{
		client:            client,
		interpretationTTL: interpretationTTL,
		logger:            logger,
	}, nil
}

// GetInterpretation returns a cached query interpretation, or (nil, nil) on
// a miss.
func (rc *RedisCache) GetInterpretation(ctx context.Context, locale models.Locale, query string) (*models.Interpretation, error) {
	val, err := rc.client.Get(ctx, interpretationKey(locale, query)).Result()
	if err == redis.Nil {
		observability.CacheMisses.Inc()
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get interpretation: %w", err)
	}

	observability.CacheHits.Inc()
	var in models.Interpretation
	if err := json.Unmarshal([]byte(val), &in); err != nil {
		return nil, fmt.Errorf("cache unmarshal interpretation: %w", err)
	}
	return &in, nil
}

func (rc *RedisCache) SetInterpretation(ctx context.Context, locale models.Locale, query string, in *models.Interpretation) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("cache marshal interpretation: %w", err)
	}
	return rc.client.Set(ctx, interpretationKey(locale, query), data, rc.interpretationTTL).Err()
}

// Allow checks the sliding-window counter for one client bucket. The window
// is a sorted set of request timestamps, trimmed on every call. An error
// means the cache is unreachable; the caller decides whether to fail open.
func (rc *RedisCache) Allow(ctx context.Context, bucket string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	key := "rl:" + bucket
	cutoff := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	pipe := rc.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", cutoff)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	card := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}

	return card.Val() <= int64(limit), nil
}

func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// interpretationKey folds the query the same way the pipeline does, so the
// cache is shared across trivially different spellings of one query.
func interpretationKey(locale models.Locale, query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("in:%s:%x", locale, h[:8])
}
