// Package querycache is a read-through cache for list and detail queries.
// Entries live in Redis under a key derived from the operation and its
// parameters, and are grouped under invalidation tags so that a mutation can
// drop every cached query it affects.
package querycache

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	keyPrefix   = "query:"
	tagPrefix   = "tag:"
	epochPrefix = "epoch:"

	// loadTimeout bounds a shared load, which no longer follows the
	// cancellation of the request that started it.
	loadTimeout = 10 * time.Second
)

var errStaleLoad = errors.New("query cache: tag invalidated during load")

type Cache struct {
	Log     *zap.Logger
	DBCache *redis.Client
	TTL     time.Duration
	group   singleflight.Group
}

func New(zap *zap.Logger, dbCache *redis.Client, ttl time.Duration) *Cache {
	return &Cache{
		Log:     zap,
		DBCache: dbCache,
		TTL:     ttl,
	}
}

// Key identifies a query by operation name and parameters.
func Key(operation string, params ...string) string {
	if len(params) == 0 {
		return keyPrefix + operation
	}

	return keyPrefix + operation + ":" + strings.Join(params, ":")
}

// Fetch returns the cached value for key or runs loader, caches its result
// under the given tags and returns it. Concurrent misses on the same key share
// one loader call, which runs detached from any single caller's cancellation;
// each caller still returns early when its own ctx is done. A result is not
// cached when one of its tags was invalidated while it loaded. A nil cache
// always runs loader.
func Fetch[T any](ctx context.Context, cache *Cache, key string, tags []string, loader func(context.Context) (T, error)) (T, error) {
	var result T

	if cache == nil {
		return loader(ctx)
	}

	err := ctx.Err()
	if err != nil {
		return result, err
	}

	raw, err := cache.DBCache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		err = sonic.Unmarshal(raw, &result)
		if err == nil {
			cacheHits.Inc()
			return result, nil
		}
		cache.Log.Warn("discarding undecodable query cache entry", zap.String("key", key), zap.Error(err))
	case !errors.Is(err, redis.Nil):
		cache.Log.Warn("failed to read query cache", zap.String("key", key), zap.Error(err))
	}

	cacheMisses.Inc()

	loads := cache.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		epochs, epochErr := cache.epochs(loadCtx, tags)

		loaded, err := loader(loadCtx)
		if err != nil {
			return loaded, err
		}

		if epochErr != nil {
			cache.Log.Warn("failed to read query cache epochs", zap.String("key", key), zap.Error(epochErr))
			return loaded, nil
		}

		cache.store(loadCtx, key, tags, epochs, loaded)

		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return result, ctx.Err()
	case loaded := <-loads:
		if loaded.Err != nil {
			return result, loaded.Err
		}

		return loaded.Val.(T), nil
	}
}

func epochKeys(tags []string) []string {
	keys := make([]string, len(tags))
	for i, tag := range tags {
		keys[i] = epochPrefix + tag
	}

	return keys
}

// epochs reads the invalidation counter of every tag. A missing counter reads
// as "".
func (cache *Cache) epochs(ctx context.Context, tags []string) ([]string, error) {
	if len(tags) == 0 {
		return nil, nil
	}

	return readEpochs(ctx, cache.DBCache, epochKeys(tags))
}

type epochReader interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

func readEpochs(ctx context.Context, client epochReader, keys []string) ([]string, error) {
	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	epochs := make([]string, len(values))
	for i, value := range values {
		epochs[i], _ = value.(string)
	}

	return epochs, nil
}

// store writes value unless a tag's epoch moved away from epochs. The epoch
// keys are watched so an invalidation racing the write aborts it.
func (cache *Cache) store(ctx context.Context, key string, tags []string, epochs []string, value any) {
	raw, err := sonic.Marshal(value)
	if err != nil {
		cache.Log.Warn("failed to encode query cache entry", zap.String("key", key), zap.Error(err))
		return
	}

	watched := epochKeys(tags)

	err = cache.DBCache.Watch(ctx, func(tx *redis.Tx) error {
		if len(watched) > 0 {
			current, err := readEpochs(ctx, tx, watched)
			if err != nil {
				return err
			}

			if !slices.Equal(current, epochs) {
				return errStaleLoad
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, cache.TTL)
			for _, tag := range tags {
				pipe.SAdd(ctx, tagPrefix+tag, key)
				pipe.Expire(ctx, tagPrefix+tag, cache.TTL)
			}
			return nil
		})
		return err
	}, watched...)

	switch {
	case err == nil:
	case errors.Is(err, errStaleLoad), errors.Is(err, redis.TxFailedErr):
		cacheStaleLoads.Inc()
		cache.Log.Debug("skipping query cache write for invalidated load", zap.String("key", key))
	default:
		cache.Log.Warn("failed to write query cache", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every cached query registered under any of the tags.
func (cache *Cache) Invalidate(ctx context.Context, tags ...string) error {
	if cache == nil {
		return nil
	}

	for _, tag := range tags {
		tagKey := tagPrefix + tag

		// Bumping the epoch first stops loads that started earlier from
		// writing their result back. The counter outlives any load.
		pipe := cache.DBCache.TxPipeline()
		pipe.Incr(ctx, epochPrefix+tag)
		pipe.Expire(ctx, epochPrefix+tag, cache.TTL+loadTimeout)
		_, err := pipe.Exec(ctx)
		if err != nil {
			return err
		}

		keys, err := cache.DBCache.SMembers(ctx, tagKey).Result()
		if err != nil {
			return err
		}

		err = cache.DBCache.Del(ctx, append(keys, tagKey)...).Err()
		if err != nil {
			return err
		}

		cacheInvalidations.Add(float64(len(keys)))
	}

	return nil
}
